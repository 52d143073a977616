package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/grove/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix は二値分類の混同行列
//
// ラベル1.0を陽性クラスとして (実際のラベル, 予測ラベル) の組を集計する。
// 予測ラベルはスコアを閾値で二値化して得る。
type ConfusionMatrix struct {
	TP int // 真陽性: label=1, prediction=1
	FP int // 偽陽性: label=0, prediction=1
	TN int // 真陰性: label=0, prediction=0
	FN int // 偽陰性: label=1, prediction=0
}

// NewConfusionMatrix はラベルとスコアから混同行列を構築する
//
// yTrueは0/1ラベル、yScoreは陽性クラスのスコア。スコアが
// threshold以上の行を陽性予測として数える。
func NewConfusionMatrix(yTrue, yScore mat.Matrix, threshold float64) (*ConfusionMatrix, error) {
	if yTrue == nil || yScore == nil {
		return nil, errors.NewValueError("NewConfusionMatrix", "nil matrix")
	}

	n, c := yTrue.Dims()
	if n == 0 || c == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty matrix")
	}
	nScore, _ := yScore.Dims()
	if nScore != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, nScore, 0)
	}

	cm := &ConfusionMatrix{}
	for i := 0; i < n; i++ {
		label := yTrue.At(i, 0)
		if label != 0 && label != 1 {
			return nil, errors.NewValueError("NewConfusionMatrix", "labels must be binary (0 or 1)")
		}

		predicted := yScore.At(i, 0) >= threshold
		switch {
		case label == 1 && predicted:
			cm.TP++
		case label == 0 && predicted:
			cm.FP++
		case label == 0 && !predicted:
			cm.TN++
		default:
			cm.FN++
		}
	}

	return cm, nil
}

// Total は集計された行数を返す
func (cm *ConfusionMatrix) Total() int {
	return cm.TP + cm.FP + cm.TN + cm.FN
}

// Accuracy は正解率 (tp+tn)/(tp+fp+tn+fn) を返す
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("accuracy", "empty confusion matrix", math.NaN()))
		return math.NaN()
	}
	return float64(cm.TP+cm.TN) / float64(total)
}

// Precision は適合率 tp/(tp+fp) を返す
//
// 陽性予測が一つも無い場合は未定義としてNaNを返し、警告を発する。
func (cm *ConfusionMatrix) Precision() float64 {
	if cm.TP+cm.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives (tp+fp=0)", math.NaN()))
		return math.NaN()
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP)
}

// Recall は再現率 tp/(tp+fn) を返す
//
// 実際の陽性が一つも無い場合は未定義としてNaNを返し、警告を発する。
func (cm *ConfusionMatrix) Recall() float64 {
	if cm.TP+cm.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no actual positives (tp+fn=0)", math.NaN()))
		return math.NaN()
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// F1 は適合率と再現率の調和平均を返す
//
// どちらかが未定義、または両方が0の場合はNaNを返す。
func (cm *ConfusionMatrix) F1() float64 {
	p := cm.Precision()
	r := cm.Recall()
	if math.IsNaN(p) || math.IsNaN(r) || p+r == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1", "precision+recall is zero or undefined", math.NaN()))
		return math.NaN()
	}
	return 2 * p * r / (p + r)
}

// String は混同行列を人間可読な2x2の表として整形する
func (cm *ConfusionMatrix) String() string {
	var sb strings.Builder
	sb.WriteString("              predicted=1  predicted=0\n")
	fmt.Fprintf(&sb, "  label=1     %11d  %11d\n", cm.TP, cm.FN)
	fmt.Fprintf(&sb, "  label=0     %11d  %11d", cm.FP, cm.TN)
	return sb.String()
}
