package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveModel はモデルをJSON形式でファイルに保存する
//
// 書き込みはアトミックに行われる: 同一ディレクトリの一時ファイルへ
// 書き込んだ後にrenameするため、読み手が書きかけのアーティファクトを
// 観測することはない。
//
// パラメータ:
//   - model: 保存するモデル（JSONエンコード可能な構造体）
//   - filename: 保存先のファイルパス
//
// 使用例:
//
//	var clf ensemble.RandomForestClassifier
//	// ... モデルの学習 ...
//	err := model.SaveModel(&clf, "model.json")
func SaveModel(model interface{}, filename string) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := SaveModelToWriter(model, tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to publish model file: %w", err)
	}
	return nil
}

// LoadModel はJSONファイルからモデルを読み込む
//
// パラメータ:
//   - model: 読み込み先のモデル（構造体のポインタ）
//   - filename: 読み込み元のファイルパス
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
