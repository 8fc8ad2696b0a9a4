package stats

import (
	"math"

	"github.com/zintix-labs/pegdrop/sdk/board"
	"github.com/zintix-labs/pegdrop/sdk/drop"
	"github.com/zintix-labs/pegdrop/sdk/payout"
	"gonum.org/v1/gonum/stat/distuv"
)

// minExpectedCount 為卡方檢定每格的最小期望次數，不足時由兩端往中間合併。
const minExpectedCount = 5.0

// FitReport 觀測分布對理論二項分布的卡方適合度檢定
type FitReport struct {
	PRight    float64 `json:"PRight"    yaml:"PRight"`
	ChiSquare float64 `json:"ChiSquare" yaml:"ChiSquare"`
	DoF       int     `json:"DoF"       yaml:"DoF"`
	PValue    float64 `json:"PValue"    yaml:"PValue"`
	Cells     int     `json:"Cells"     yaml:"Cells"`
}

// PRight 回傳每列往右的邊際機率。
//
// 對隨機 peg map 取期望，leftBias 以 0.5 為中心對稱，
// 且 0.5 ± 0.1 加上 |adj| ≤ 0.06 不會觸發夾取，因此 P(右) = 0.5 - adj。
func PRight(dropColumn int) float64 {
	return 0.5 - drop.Adjustment(dropColumn)
}

// Expected 回傳 Binomial(12, PRight) 的各桶機率。
func Expected(dropColumn int) []float64 {
	b := distuv.Binomial{N: float64(board.Rows), P: PRight(dropColumn)}
	out := make([]float64, drop.Bins)
	for k := range out {
		out[k] = b.Prob(float64(k))
	}
	return out
}

// TheoreticalRTP 回傳理論分布下的期望倍率。
func TheoreticalRTP(dropColumn int) float64 {
	rtp := 0.0
	for k, p := range Expected(dropColumn) {
		rtp += p * payout.Multiplier(k)
	}
	return rtp
}

// chiSquareFit 對 observed 與機率 expected 做卡方檢定。
func chiSquareFit(observed []int, expected []float64) FitReport {
	n := 0
	for _, c := range observed {
		n += c
	}
	fit := FitReport{PValue: 1}
	if n == 0 || len(observed) != len(expected) {
		return fit
	}

	obs, exp := poolCells(observed, expected, float64(n))
	fit.Cells = len(obs)
	if len(obs) < 2 {
		return fit
	}
	chi := 0.0
	for i := range obs {
		d := obs[i] - exp[i]
		chi += d * d / exp[i]
	}
	fit.ChiSquare = chi
	fit.DoF = len(obs) - 1
	fit.PValue = distuv.ChiSquared{K: float64(fit.DoF)}.Survival(chi)
	if math.IsNaN(fit.PValue) {
		fit.PValue = 0
	}
	return fit
}

// poolCells 把兩端期望次數不足的格子往內合併。
func poolCells(observed []int, prob []float64, n float64) ([]float64, []float64) {
	obs := make([]float64, len(observed))
	exp := make([]float64, len(prob))
	for i := range observed {
		obs[i] = float64(observed[i])
		exp[i] = prob[i] * n
	}
	for len(exp) > 1 && exp[0] < minExpectedCount {
		obs[1] += obs[0]
		exp[1] += exp[0]
		obs, exp = obs[1:], exp[1:]
	}
	for l := len(exp); l > 1 && exp[l-1] < minExpectedCount; l = len(exp) {
		obs[l-2] += obs[l-1]
		exp[l-2] += exp[l-1]
		obs, exp = obs[:l-1], exp[:l-1]
	}
	return obs, exp
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}
