// Package recommendation scores a fixed instrument catalogue against
// user preferences and turns questionnaire answers into a starter basket.
package recommendation

// Axis indexes the five preference axes of a Profile
type Axis int

const (
	AxisStability Axis = iota
	AxisGrowth
	AxisDividend
	AxisInflation
	AxisCurrency
)

// AxisNames are the display names of the preference axes, in Axis order
var AxisNames = [5]string{"安定", "成長", "配当", "インフレ耐性", "為替分散"}

// Profile scores an instrument 0-5 on each axis
type Profile [5]int

// Candidate is one recommendable instrument
type Candidate struct {
	Ticker  string   `json:"ticker"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
	Profile Profile  `json:"profile"`
}

// Catalogue lists US ETFs followed by major Tokyo listings and TOPIX/Nikkei ETFs
var Catalogue = []Candidate{
	{"SPY", "S&P 500 ETF", []string{"米国株", "広く分散", "大型株"}, Profile{4, 4, 2, 2, 1}},
	{"VTI", "米国全市場ETF", []string{"米国株", "広く分散"}, Profile{4, 4, 2, 2, 1}},
	{"QQQ", "NASDAQ 100 ETF", []string{"成長", "テック"}, Profile{2, 5, 1, 1, 1}},
	{"VXUS", "米国外株式ETF", []string{"海外分散"}, Profile{3, 3, 2, 2, 5}},
	{"AGG", "米国総合債券ETF", []string{"債券", "安定"}, Profile{5, 1, 2, 1, 1}},
	{"TLT", "米国長期国債ETF", []string{"債券", "金利感応"}, Profile{3, 1, 2, 1, 1}},
	{"GLD", "金ETF", []string{"コモディティ", "インフレ耐性"}, Profile{3, 1, 0, 5, 3}},
	{"XLE", "エネルギーETF", []string{"インフレ耐性", "景気敏感"}, Profile{2, 3, 2, 4, 1}},
	{"HDV", "米国高配当ETF", []string{"配当", "安定"}, Profile{4, 2, 5, 2, 1}},
	{"VYM", "米国高配当ETF(広く)", []string{"配当", "安定"}, Profile{4, 2, 5, 2, 1}},

	{"7203.T", "トヨタ自動車", []string{"日本株", "自動車", "大型", "輸出"}, Profile{5, 3, 2, 2, 3}},
	{"6758.T", "ソニーグループ", []string{"日本株", "エレクトロニクス", "エンタメ"}, Profile{4, 4, 1, 1, 3}},
	{"9984.T", "ソフトバンクグループ", []string{"日本株", "投資持株", "テック"}, Profile{2, 4, 0, 1, 2}},
	{"9983.T", "ファーストリテイリング", []string{"日本株", "小売", "グローバル"}, Profile{4, 4, 0, 2, 4}},
	{"8035.T", "東京エレクトロン", []string{"日本株", "半導体製造装置"}, Profile{3, 5, 1, 1, 3}},
	{"6861.T", "キーエンス", []string{"日本株", "FA機器", "高収益"}, Profile{4, 4, 1, 1, 3}},
	{"7974.T", "任天堂", []string{"日本株", "ゲーム", "コンテンツ"}, Profile{3, 4, 1, 1, 3}},
	{"8306.T", "三菱UFJフィナンシャルG", []string{"日本株", "銀行", "金利敏感", "配当"}, Profile{4, 2, 4, 1, 1}},
	{"8058.T", "三菱商事", []string{"日本株", "商社", "資源", "配当"}, Profile{4, 3, 4, 3, 3}},
	{"8031.T", "三井物産", []string{"日本株", "商社", "資源", "配当"}, Profile{4, 3, 4, 3, 3}},
	{"6501.T", "日立製作所", []string{"日本株", "総合電機", "ITソリューション"}, Profile{4, 4, 2, 2, 2}},
	{"6367.T", "ダイキン工業", []string{"日本株", "空調", "グローバル"}, Profile{4, 4, 1, 2, 3}},
	{"4063.T", "信越化学工業", []string{"日本株", "化学", "半導体材料"}, Profile{4, 4, 1, 1, 2}},
	{"6981.T", "村田製作所", []string{"日本株", "電子部品"}, Profile{3, 4, 1, 1, 3}},
	{"6594.T", "日本電産(Nidec)", []string{"日本株", "モーター", "EV関連"}, Profile{3, 4, 0, 1, 3}},
	{"4543.T", "テルモ", []string{"日本株", "医療機器", "ディフェンシブ"}, Profile{4, 3, 1, 1, 2}},
	{"4502.T", "武田薬品工業", []string{"日本株", "医薬", "ディフェンシブ", "配当"}, Profile{4, 2, 4, 1, 2}},
	{"3382.T", "セブン&アイ・ホールディングス", []string{"日本株", "小売", "ディフェンシブ"}, Profile{4, 2, 2, 2, 1}},
	{"6098.T", "リクルートホールディングス", []string{"日本株", "人材", "IT"}, Profile{3, 4, 0, 1, 2}},
	{"2413.T", "エムスリー", []string{"日本株", "医療IT", "成長"}, Profile{2, 4, 0, 1, 2}},
	{"9432.T", "日本電信電話(NTT)", []string{"日本株", "通信", "ディフェンシブ", "配当"}, Profile{5, 1, 4, 1, 1}},
	{"9433.T", "KDDI", []string{"日本株", "通信", "ディフェンシブ", "配当"}, Profile{5, 1, 4, 1, 1}},
	{"9434.T", "ソフトバンク(通信)", []string{"日本株", "通信", "配当"}, Profile{4, 1, 5, 1, 1}},
	{"7270.T", "SUBARU", []string{"日本株", "自動車", "輸出"}, Profile{3, 3, 2, 2, 3}},
	{"7267.T", "ホンダ", []string{"日本株", "自動車", "輸出"}, Profile{4, 3, 2, 2, 3}},
	{"6752.T", "パナソニックHD", []string{"日本株", "電機"}, Profile{3, 3, 2, 1, 2}},
	{"4661.T", "オリエンタルランド", []string{"日本株", "レジャー", "内需"}, Profile{4, 3, 0, 1, 1}},
	{"2914.T", "日本たばこ産業(JT)", []string{"日本株", "食品", "配当"}, Profile{4, 2, 5, 2, 2}},
	{"7201.T", "日産自動車", []string{"日本株", "自動車", "輸出"}, Profile{2, 3, 1, 2, 3}},
	{"6750.T", "エレコム", []string{"日本株", "周辺機器"}, Profile{3, 3, 2, 1, 1}},

	{"1306.T", "TOPIX連動型上場投資信託", []string{"日本株", "ETF", "広く分散"}, Profile{5, 3, 2, 2, 1}},
	{"1305.T", "ダイワETF・TOPIX", []string{"日本株", "ETF", "広く分散"}, Profile{5, 3, 2, 2, 1}},
	{"1321.T", "日経225連動型上場投資信託", []string{"日本株", "ETF", "大型"}, Profile{4, 3, 2, 2, 1}},
}

var byTicker = func() map[string]Candidate {
	m := make(map[string]Candidate, len(Catalogue))
	for _, c := range Catalogue {
		m[c.Ticker] = c
	}
	return m
}()

// Lookup returns the catalogue entry for a ticker
func Lookup(ticker string) (Candidate, bool) {
	c, ok := byTicker[ticker]
	return c, ok
}

// Tickers returns every catalogue ticker in catalogue order
func Tickers() []string {
	out := make([]string, len(Catalogue))
	for i, c := range Catalogue {
		out[i] = c.Ticker
	}
	return out
}
