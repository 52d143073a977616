package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/grove/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AUC はROC曲線の下側面積（Area Under the ROC Curve）を計算する
//
// yTrueは0/1の二値ラベル、yPredは任意の実数スコア（大きいほど陽性らしい）。
// 同順位はMann-Whitney U統計量の平均ランクで処理する。
// 片方のクラスしか存在しない場合は未定義となり、警告を発して0.5を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		v := yTrue.AtVec(i)
		if v != 0 && v != 1 {
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
		if v == 1 {
			nPos++
		}
	}
	nNeg := n - nPos

	// 片方のクラスしか無い場合、順位付け品質は定義できない
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// スコア昇順の平均ランクを割り当てる（タイは平均ランク）
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return yPred.AtVec(indices[a]) < yPred.AtVec(indices[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(indices[j]) == yPred.AtVec(indices[i]) {
			j++
		}
		// ランクは1始まり。[i, j) が同値グループ
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[indices[k]] = avgRank
		}
		i = j
	}

	var rankSumPos float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSumPos += ranks[i]
		}
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2.0
	return u / (float64(nPos) * float64(nNeg)), nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列を使用）
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}

	rTrue, cTrue := yTrue.Dims()
	rPred, _ := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AUCMatrix", rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}

	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss は二値分類の対数損失を計算する
//
// 予測確率は log(0) を避けるため [eps, 1-eps] にクリップされる。
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	const eps = 1e-15
	var loss float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if y != 0 && y != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}

		p := yPred.AtVec(i)
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}

		if y == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}

	return loss / float64(n), nil
}

// ClassificationError は誤分類率（誤り率）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("ClassificationError", "empty vector")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("ClassificationError", n, yPred.Len(), 0)
	}

	wrong := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) != yPred.AtVec(i) {
			wrong++
		}
	}

	return float64(wrong) / float64(n), nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	errRate, err := ClassificationError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - errRate, nil
}
