package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/pegdrop/stats"
	"gopkg.in/yaml.v3"
)

var pascal12 = []int{1, 12, 66, 220, 495, 792, 924, 792, 495, 220, 66, 12, 1}

// buildReport 依 counts 逐局記錄
func buildReport(t *testing.T, col int, counts []int) *stats.BinReport {
	t.Helper()
	rep, err := stats.NewBinReport("test", col)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	for bin, c := range counts {
		for i := 0; i < c; i++ {
			rep.Record(bin)
		}
	}
	rep.Done()
	return rep
}

func TestExpectedIsBinomial(t *testing.T) {
	exp := stats.Expected(6)
	sum := 0.0
	for k, p := range exp {
		want := float64(pascal12[k]) / 4096.0
		if math.Abs(p-want) > 1e-12 {
			t.Fatalf("bin %d got %.12f want %.12f", k, p, want)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	if got := stats.PRight(12); math.Abs(got-0.44) > 1e-12 {
		t.Fatalf("PRight(12) got %v", got)
	}
}

func TestTheoreticalRTP(t *testing.T) {
	if got := stats.TheoreticalRTP(6); math.Abs(got-0.61025390625) > 1e-12 {
		t.Fatalf("center RTP got %.12f", got)
	}
	if got := stats.TheoreticalRTP(0); math.Abs(got-0.6380303507434365) > 1e-12 {
		t.Fatalf("column 0 RTP got %.12f", got)
	}
	// 對稱
	if math.Abs(stats.TheoreticalRTP(0)-stats.TheoreticalRTP(12)) > 1e-12 {
		t.Fatalf("RTP should be symmetric")
	}
}

func TestBinReportPerfectFit(t *testing.T) {
	rep := buildReport(t, 6, pascal12)
	if rep.Summary.Rounds != 4096 {
		t.Fatalf("rounds got %d", rep.Summary.Rounds)
	}
	if math.Abs(rep.Rtp()-0.61025390625) > 1e-9 {
		t.Fatalf("RTP got %v", rep.Rtp())
	}
	if rep.Fit.ChiSquare > 1e-9 || rep.Fit.PValue < 0.999 {
		t.Fatalf("perfect counts should fit: %+v", rep.Fit)
	}
	// 兩端期望次數 1 < 5，各自併入相鄰格
	if rep.Fit.Cells != 11 || rep.Fit.DoF != 10 {
		t.Fatalf("pooling got %d cells dof %d", rep.Fit.Cells, rep.Fit.DoF)
	}
	if math.Abs(rep.Summary.CenterRate-924.0/4096.0) > 1e-12 {
		t.Fatalf("center rate got %v", rep.Summary.CenterRate)
	}
	ci := rep.Dist.DistCI[6]
	if !(ci.Lo < rep.Dist.Dist[6] && rep.Dist.Dist[6] < ci.Hi) {
		t.Fatalf("CI does not cover estimate: %+v", ci)
	}
}

func TestBinReportDetectsSkew(t *testing.T) {
	skew := make([]int, 13)
	skew[0] = 4096
	rep := buildReport(t, 6, skew)
	if rep.Fit.PValue > 1e-6 {
		t.Fatalf("all-left counts should be rejected, p=%v", rep.Fit.PValue)
	}
	if rep.Rtp() != 2.0 || rep.Std() != 0 {
		t.Fatalf("rtp %v std %v", rep.Rtp(), rep.Std())
	}
}

func TestMerge(t *testing.T) {
	a := buildReport(t, 3, []int{0, 0, 0, 0, 0, 0, 2})
	b := buildReport(t, 3, []int{1})
	m, err := stats.Merge("merged", []*stats.BinReport{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	m.Done()
	if m.Summary.Rounds != 3 || m.Dist.Collect[0] != 1 || m.Dist.Collect[6] != 2 {
		t.Fatalf("merged counts wrong: %+v", m.Dist.Collect)
	}
	want := (2.0 + 0.3 + 0.3) / 3
	if math.Abs(m.Rtp()-want) > 1e-12 {
		t.Fatalf("merged RTP got %v want %v", m.Rtp(), want)
	}
	c := buildReport(t, 4, []int{1})
	if _, err := stats.Merge("bad", []*stats.BinReport{a, c}); err == nil {
		t.Fatalf("expected column mismatch error")
	}
	if _, err := stats.Merge("empty", nil); err == nil {
		t.Fatalf("expected empty merge error")
	}
}

func TestNewBinReportRejectsColumn(t *testing.T) {
	if _, err := stats.NewBinReport("x", 13); err == nil {
		t.Fatalf("expected invalid column error")
	}
}

func TestRenderers(t *testing.T) {
	rep := buildReport(t, 6, pascal12)

	var js bytes.Buffer
	r, ok := stats.RenderFor("json")
	if !ok {
		t.Fatalf("json render missing")
	}
	if err := rep.WriteWith(&js, r); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back stats.BinReport
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if back.Summary.Rounds != 4096 {
		t.Fatalf("json rounds got %d", back.Summary.Rounds)
	}

	var ys bytes.Buffer
	r, _ = stats.RenderFor("yaml")
	if err := rep.WriteWith(&ys, r); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(ys.String(), "Collect: [1, 12, 66") {
		t.Fatalf("inner list should be flow style:\n%s", ys.String())
	}
	var m map[string]any
	if err := yaml.Unmarshal(ys.Bytes(), &m); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}

	if _, ok := stats.RenderFor("xml"); ok {
		t.Fatalf("unexpected xml render")
	}
}

func TestStdOut(t *testing.T) {
	rep := buildReport(t, 6, pascal12)
	var out bytes.Buffer
	rep.StdOut(&out, 2*time.Second)
	s := out.String()
	for _, want := range []string{"used: 2.00 seconds", "dps : 2,048 drops/sec", "Theoretical RTP", "Bin  6 (x0.3)", "Total Rounds"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in:\n%s", want, s)
		}
	}
}
