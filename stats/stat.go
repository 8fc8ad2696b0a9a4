package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/pegdrop/errs"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/payout"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// BinReport 單一落點的大量模擬統計報告
type BinReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Mult    *MultReport    `json:"Mult"    yaml:"Mult"`
	Dist    *DistReport    `json:"Dist"    yaml:"Dist"`
	Fit     *FitReport     `json:"Fit"     yaml:"Fit"`
	isDone  bool
}

type SummaryReport struct {
	Title          string  `json:"Title"          yaml:"Title"`
	DropColumn     int     `json:"DropColumn"     yaml:"DropColumn"`
	Rounds         int     `json:"Rounds"         yaml:"Rounds"`
	RTP            float64 `json:"RTP"            yaml:"RTP"`
	RtpCI          CI      `json:"RtpCI"          yaml:"RtpCI"`
	TheoreticalRTP float64 `json:"TheoreticalRTP" yaml:"TheoreticalRTP"`
	Std            float64 `json:"Std"            yaml:"Std"`
	Cv             float64 `json:"Cv"             yaml:"Cv"`
	CenterRate     float64 `json:"CenterRate"     yaml:"CenterRate"`
}

// MultReport 倍率累計
//
// 紀錄時只累加，Done() 時再換算 RTP / Std
type MultReport struct {
	TotalMult      float64 `json:"TotalMult"      yaml:"TotalMult"`
	TotalMultSqSum float64 `json:"TotalMultSqSum" yaml:"TotalMultSqSum"` // 平方和
}

// DistReport 各桶落點統計
type DistReport struct {
	Multiplier []float64 `json:"Multiplier" yaml:"Multiplier"`
	Collect    []int     `json:"Collect"    yaml:"Collect"`
	Dist       []float64 `json:"Dist"       yaml:"Dist"`
	DistCI     []CI      `json:"DistCI"     yaml:"DistCI"`
	Expected   []float64 `json:"Expected"   yaml:"Expected"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// NewBinReport 建立空白報告。dropColumn 必須合法。
func NewBinReport(title string, dropColumn int) (*BinReport, error) {
	if err := drop.ValidateColumn(dropColumn); err != nil {
		return nil, err
	}
	return &BinReport{
		Summary: &SummaryReport{Title: title, DropColumn: dropColumn},
		Mult:    &MultReport{},
		Dist: &DistReport{
			Multiplier: payout.Table(),
			Collect:    make([]int, drop.Bins),
			Dist:       make([]float64, drop.Bins),
			DistCI:     make([]CI, drop.Bins),
			Expected:   Expected(dropColumn),
		},
		Fit: &FitReport{},
	}, nil
}

// Record 記錄一局落入的桶。
func (s *BinReport) Record(bin int) {
	m := payout.Multiplier(bin)
	if bin >= 0 && bin < len(s.Dist.Collect) {
		s.Dist.Collect[bin]++
	}
	s.Summary.Rounds++
	s.Mult.TotalMult += m
	s.Mult.TotalMultSqSum += m * m
	s.isDone = false
}

// Merge 合併多份同落點的報告（通常來自各 worker）。
func Merge(title string, reps []*BinReport) (*BinReport, error) {
	if len(reps) == 0 {
		return nil, errs.NewWarn("no report to merge")
	}
	col := reps[0].Summary.DropColumn
	out, err := NewBinReport(title, col)
	if err != nil {
		return nil, err
	}
	for _, r := range reps {
		if r.Summary.DropColumn != col {
			return nil, errs.InvalidInput("merge drop column mismatch: %d vs %d", r.Summary.DropColumn, col)
		}
		out.Summary.Rounds += r.Summary.Rounds
		out.Mult.TotalMult += r.Mult.TotalMult
		out.Mult.TotalMultSqSum += r.Mult.TotalMultSqSum
		for i, c := range r.Dist.Collect {
			out.Dist.Collect[i] += c
		}
	}
	return out, nil
}

// Done 將累積計數轉換為最終統計結果，並做分布的適合度檢定。
//
// 可重複呼叫；Record 之後需再 Done 一次。
func (s *BinReport) Done() {
	if s.isDone {
		return
	}
	n := s.Summary.Rounds
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	s.Summary.TheoreticalRTP = TheoreticalRTP(s.Summary.DropColumn)

	for i, c := range s.Dist.Collect {
		s.Dist.Dist[i], s.Dist.DistCI[i] = proportionCICP(c, n, 0.95)
	}
	if n > 0 {
		s.Summary.CenterRate = s.Dist.Dist[drop.CenterColumn]
	}
	*s.Fit = chiSquareFit(s.Dist.Collect, s.Dist.Expected)
	s.Fit.PRight = PRight(s.Summary.DropColumn)

	s.isDone = true
}

// Rtp 回傳整體 RTP（總倍率 / 局數，以單位押注計）
func (s *BinReport) Rtp() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return s.Mult.TotalMult / float64(s.Summary.Rounds)
}

// Std 回傳單局倍率的標準差
func (s *BinReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	multPow := s.Mult.TotalMult * s.Mult.TotalMult
	variance := (s.Mult.TotalMultSqSum - multPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局倍率的變異係數
func (s *BinReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *BinReport) Ci() CI {
	rtp := s.Rtp()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
}

func (s *BinReport) WriteWith(w io.Writer, rep BinReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 以表格輸出摘要與各桶分布。
func (s *BinReport) StdOut(w io.Writer, ut time.Duration) {
	s.Done()
	formatDuration(w, ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.Title, sk, sm))
	bk, bm := s.fmtBins()
	fmt.Fprintln(w, fmtTable("Bins", bk, bm))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(w io.Writer, d time.Duration, drops int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(drops) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.2f seconds\ndps : %d drops/sec\n", sec, dps)
		return
	}
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	rem := int(d.Seconds()) % 60
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\ndps : %d drops/sec\n", m, rem, dps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\ndps : %d drops/sec\n", h, m, rem, dps)
}

func (s *BinReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Drop Column":     p.Sprintf("%d", s.Summary.DropColumn),
		"Total Rounds":    p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":       p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":      p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Theoretical RTP": p.Sprintf("%.2f %%", 100.0*s.Summary.TheoreticalRTP),
		"Center Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.CenterRate),
		"STD":             p.Sprintf("%.3f", s.Summary.Std),
		"CV":              p.Sprintf("%.3f", s.Summary.Cv),
		"Chi-Square":      p.Sprintf("%.3f (dof %d)", s.Fit.ChiSquare, s.Fit.DoF),
		"P-Value":         p.Sprintf("%.4f", s.Fit.PValue),
	}
	keys := []string{"Drop Column", "Total Rounds", "Total RTP", "RTP 95% CI", "Theoretical RTP", "Center Rate", "STD", "CV", "Chi-Square", "P-Value"}
	return keys, basic
}

func (s *BinReport) fmtBins() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, len(s.Dist.Collect))
	msg := make(map[string]string, len(s.Dist.Collect))
	for i, c := range s.Dist.Collect {
		k := p.Sprintf("Bin %2d (x%.1f)", i, s.Dist.Multiplier[i])
		keys[i] = k
		msg[k] = p.Sprintf("%d | %.3f%% | exp %.3f%%", c, 100.0*s.Dist.Dist[i], 100.0*s.Dist.Expected[i])
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := max((totalInner-titleW)/2, 0)
	right := max(totalInner-titleW-left, 0)

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
