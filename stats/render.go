package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// BinReportRender 定義輸出行為
type BinReportRender interface {
	Write(w io.Writer, r *BinReport) error
}

// Json渲染
type JsonBinReportRender struct{}

func (jr *JsonBinReportRender) Write(w io.Writer, r *BinReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML渲染
type YAMLBinReportRender struct{}

func (yr *YAMLBinReportRender) Write(w io.Writer, r *BinReport) error {
	// 只有「最內層的一維陣列」輸出成 flow style：[..., ...]，外層維持展開
	return forceReadableList(w, r)
}

// RenderFor 依名稱回傳渲染器："json" / "yaml"。
func RenderFor(name string) (BinReportRender, bool) {
	switch name {
	case "json":
		return &JsonBinReportRender{}, true
	case "yaml", "yml":
		return &YAMLBinReportRender{}, true
	default:
		return nil, false
	}
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 自頂向下調整所有 sequence node 的 style：
	// - 若該 sequence 內部「沒有子 sequence」，代表它是最內層的一維（或本身就是一維）=> 用 flow style: [...]
	// - 若該 sequence 內部「有子 sequence」，代表它是外層維度 => 保持預設 block（展開）
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		// 先判斷這個 sequence 是否包含子 sequence（代表外層維度）
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
				break
			}
		}

		// 先遞迴處理子節點（讓最內層先被標記成 flow）
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

		// 最內層一維（或本身就是一維）=> flow style: [a, b, c]
		// 外層維度 => 保持預設 block style（不強制設定 style）
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		// Scalar / Alias 等不處理
		return
	}
}
