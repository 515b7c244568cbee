package simulation

// DCA sweeps the index once, buying units at each day's index value.
// The first point receives initial plus monthly; every later point that
// opens a new calendar month receives monthly. Non-positive amounts are
// never invested.
func DCA(points []IndexPoint, initial, monthly float64) []DCAPoint {
	out := make([]DCAPoint, 0, len(points))

	var units, contributions float64
	lastMonth := ""
	for i, p := range points {
		idx := unitPrice(p.Total)
		month := yearMonth(p.Date)

		var add float64
		if i == 0 {
			if initial > 0 {
				add += initial
			}
			if monthly > 0 {
				add += monthly
			}
		} else if month != lastMonth && monthly > 0 {
			add += monthly
		}

		if add > 0 {
			units += add / idx
			contributions += add
		}

		out = append(out, DCAPoint{
			Date:    p.Date,
			Idx:     idx,
			AUM:     units * idx,
			Contrib: contributions,
		})
		lastMonth = month
	}

	return out
}

// DCAExtremes picks the dates of highest and lowest return on contributed
// capital. Dates without contributions are skipped; if every date is
// skipped both extremes stay at zero.
func DCAExtremes(points []DCAPoint) Extremes {
	var ext Extremes
	found := false

	for _, p := range points {
		if p.Contrib <= 0 {
			continue
		}
		gain := p.AUM - p.Contrib
		pt := ExtremePoint{
			Date: p.Date,
			Amt:  gain,
			Pct:  gain / p.Contrib,
			Y:    p.AUM,
		}
		if !found || pt.Pct > ext.MaxGain.Pct {
			ext.MaxGain = pt
		}
		if !found || pt.Pct < ext.MaxLoss.Pct {
			ext.MaxLoss = pt
		}
		found = true
	}

	return ext
}

// yearMonth returns the YYYY-MM prefix of a date.
func yearMonth(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
