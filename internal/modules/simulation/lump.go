package simulation

// LumpAUM values a single upfront investment along the index.
func LumpAUM(points []IndexPoint, amount float64) []AUMPoint {
	out := make([]AUMPoint, len(points))
	for i, p := range points {
		out[i] = AUMPoint{Date: p.Date, AUM: amount * unitPrice(p.Total)}
	}
	return out
}

// LumpExtremes picks the dates of highest and lowest index return.
// Returns are compared as total-1 so the choice does not depend on the
// amount. Ties keep the earliest date.
func LumpExtremes(points []IndexPoint, amount float64) Extremes {
	if len(points) == 0 {
		return Extremes{}
	}

	var ext Extremes
	for i, p := range points {
		idx := unitPrice(p.Total)
		pt := ExtremePoint{
			Date: p.Date,
			Amt:  amount * (idx - 1),
			Pct:  idx - 1,
			Y:    amount * idx,
		}
		if i == 0 || pt.Pct > ext.MaxGain.Pct {
			ext.MaxGain = pt
		}
		if i == 0 || pt.Pct < ext.MaxLoss.Pct {
			ext.MaxLoss = pt
		}
	}

	return ext
}
