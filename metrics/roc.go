package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/grove/pkg/errors"
)

// ROCPoint はROC曲線上の一点
type ROCPoint struct {
	FPR       float64 // 偽陽性率
	TPR       float64 // 真陽性率
	Threshold float64 // この点を生む判定閾値
}

// ROCCurve はROC曲線の点列を計算する
//
// スコアの降順に閾値を掃引し、(0,0)から(1,1)までの点列を返す。
// 同一スコアは一つの閾値として扱う。
func ROCCurve(yTrue, yScore *mat.VecDense) ([]ROCPoint, error) {
	if yTrue == nil || yScore == nil || yTrue.Len() == 0 {
		return nil, errors.NewValueError("ROCCurve", "empty vector")
	}

	n := yTrue.Len()
	if yScore.Len() != n {
		return nil, errors.NewDimensionError("ROCCurve", n, yScore.Len(), 0)
	}

	nPos, nNeg := 0, 0
	for i := 0; i < n; i++ {
		v := yTrue.AtVec(i)
		if v != 0 && v != 1 {
			return nil, errors.NewValueError("ROCCurve", "labels must be binary (0 or 1)")
		}
		if v == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewValueError("ROCCurve", "both classes must be present")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return yScore.AtVec(indices[a]) > yScore.AtVec(indices[b])
	})

	points := []ROCPoint{{FPR: 0, TPR: 0, Threshold: yScore.AtVec(indices[0]) + 1}}
	tp, fp := 0, 0
	for i := 0; i < n; {
		threshold := yScore.AtVec(indices[i])
		// 同一スコアをまとめて処理する
		for i < n && yScore.AtVec(indices[i]) == threshold {
			if yTrue.AtVec(indices[i]) == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, ROCPoint{
			FPR:       float64(fp) / float64(nNeg),
			TPR:       float64(tp) / float64(nPos),
			Threshold: threshold,
		})
	}

	return points, nil
}

// SaveROCPlot はROC曲線をPNG画像として保存する
func SaveROCPlot(points []ROCPoint, path string) error {
	if len(points) == 0 {
		return errors.NewValueError("SaveROCPlot", "empty curve")
	}

	p := plot.New()
	p.Title.Text = "ROC Curve"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.FPR
		xys[i].Y = pt.TPR
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "SaveROCPlot: build line")
	}
	p.Add(line, plotter.NewGrid())

	// 対角線（ランダム分類器の基準線）
	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "SaveROCPlot: build diagonal")
	}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(diag)

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "SaveROCPlot: save")
	}
	return nil
}
