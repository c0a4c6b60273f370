package booking

const (
	// ConvenienceFeePercent は小計に対する手数料率
	ConvenienceFeePercent = 2
	// GSTPercent は小計＋手数料に対する税率
	GSTPercent = 18
)

// Charges は支払金額の内訳
type Charges struct {
	Subtotal       int
	ConvenienceFee int
	GST            int
	Total          int
}

// CalculateCharges は小計から手数料・GST・合計を計算する
// 手数料を先に四捨五入し、GST は小計＋手数料に対して計算する
func CalculateCharges(subtotal int) Charges {
	fee := percentOf(subtotal, ConvenienceFeePercent)
	gst := percentOf(subtotal+fee, GSTPercent)
	return Charges{
		Subtotal:       subtotal,
		ConvenienceFee: fee,
		GST:            gst,
		Total:          subtotal + fee + gst,
	}
}

// percentOf は amount の pct% を四捨五入（0.5 は切り上げ）した整数を返す
func percentOf(amount, pct int) int {
	if amount <= 0 {
		return 0
	}
	return (amount*pct + 50) / 100
}
