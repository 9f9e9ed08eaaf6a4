package domain

import "time"

// HistogramBin is a half-open price interval [Lower, Upper); the last bin of a histogram is closed
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an equal-width bucketing of the values that were present
type Histogram struct {
	Count int            `json:"count"`
	Min   *float64       `json:"min"`
	Max   *float64       `json:"max"`
	Mean  *float64       `json:"mean"`
	Bins  []HistogramBin `json:"bins"`
}

// ColumnStats holds descriptive statistics for one numeric column.
// Statistics are nil when the column has no values (Std also needs two).
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"q25"`
	Median *float64 `json:"median"`
	Q75    *float64 `json:"q75"`
	Max    *float64 `json:"max"`
}

// CountEntry is a key with its number of occurrences
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MeanEntry is a key with the mean of some value; Mean is nil when nothing was averaged
type MeanEntry struct {
	Key   string   `json:"key"`
	Mean  *float64 `json:"mean"`
	Count int      `json:"count"`
}

// Preview holds the first and last rows of the table
type Preview struct {
	TotalRows int       `json:"totalRows"`
	Head      []Product `json:"head"`
	Tail      []Product `json:"tail"`
}

// DatasetSummary collects every aggregation shown on the dataset page
type DatasetSummary struct {
	Version              string        `json:"version"`
	GeneratedAt          time.Time     `json:"generatedAt"`
	Preview              Preview       `json:"preview"`
	Statistics           []ColumnStats `json:"statistics"`
	TopBrands            []CountEntry  `json:"topBrands"`
	MeanRankBySkinType   []MeanEntry   `json:"meanRankBySkinType"`
	PriceDistribution    Histogram     `json:"priceDistribution"`
	TopIngredients       []CountEntry  `json:"topIngredients"`
	TopBrandsByMeanPrice []MeanEntry   `json:"topBrandsByMeanPrice"`
}
