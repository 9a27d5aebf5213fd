package ml

import (
	"errors"
	"fmt"
	"math"
)

// Training schedule for the gradient-descent fit. Fixed values and zero
// initialization make every fit on the same data bit-for-bit identical.
const (
	trainIterations = 500
	trainStepSize   = 0.1
)

// LogisticRegression is a fitted binary classifier: a weight per feature
// column, an intercept, and the per-class loss weights it was trained
// with. Instances are immutable once fitted.
type LogisticRegression struct {
	Weights     []float64  `json:"weights"`
	Bias        float64    `json:"bias"`
	ClassWeight [2]float64 `json:"class_weight"`
}

// Score returns the probability of the delayed class for one encoded
// feature vector.
func (m *LogisticRegression) Score(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature width %d does not match model width %d", len(features), len(m.Weights))
	}
	z := m.Bias
	for i, w := range m.Weights {
		z += w * features[i]
	}
	return sigmoid(z), nil
}

// PredictRow maps one feature vector to a 0/1 label.
func (m *LogisticRegression) PredictRow(features []float64) (int, error) {
	p, err := m.Score(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

// fitLogistic trains a weighted logistic regression by full-batch
// gradient descent. classWeight scales each sample's loss contribution by
// its label, which is how the minority class is upweighted.
func fitLogistic(features [][]float64, labels []int, classWeight [2]float64) (*LogisticRegression, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	var totalWeight float64
	for i, row := range features {
		if len(row) != width {
			return nil, errors.New("ragged feature matrix")
		}
		if labels[i] != 0 && labels[i] != 1 {
			return nil, fmt.Errorf("label out of range: %d", labels[i])
		}
		totalWeight += classWeight[labels[i]]
	}
	if totalWeight == 0 {
		return nil, errors.New("total sample weight is zero")
	}

	weights := make([]float64, width)
	bias := 0.0
	grad := make([]float64, width)
	for iter := 0; iter < trainIterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range features {
			z := bias
			for j, w := range weights {
				z += w * row[j]
			}
			residual := classWeight[labels[i]] * (sigmoid(z) - float64(labels[i]))
			for j, x := range row {
				grad[j] += residual * x
			}
			gradBias += residual
		}
		for j := range weights {
			weights[j] -= trainStepSize * grad[j] / totalWeight
		}
		bias -= trainStepSize * gradBias / totalWeight
	}

	return &LogisticRegression{Weights: weights, Bias: bias, ClassWeight: classWeight}, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
