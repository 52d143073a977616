package model

// EstimatorState は分類器の学習状態を表す
type EstimatorState int

const (
	// NotFitted は Fit がまだ成功していない状態
	NotFitted EstimatorState = iota
	// Fitted は Fit が成功し、予測と保存が可能な状態
	Fitted
)

// BaseEstimator は決定木やランダムフォレストなどの分類器に埋め込まれ、
// 学習状態の管理を一箇所に集約する。Predict や PredictProba は
// IsFitted を確認してから推論を行う。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted は分類器が学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は分類器を学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset は分類器を未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
