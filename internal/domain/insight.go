package domain

import (
	"time"
)

// InsightWindow é a granularidade de agregação de uma linha de insight.
type InsightWindow string

const (
	InsightWindowDay InsightWindow = "day"
)

// Insight é o snapshot de performance de uma entidade em um dia.
// Uma linha por (entity_type, entity_id, date, window). Linhas de datas
// passadas são imutáveis; apenas o dia corrente é reescrito a cada sync.
type Insight struct {
	ID          int64         `json:"id"`
	AccountID   string        `json:"account_id"`
	Provider    Provider      `json:"provider"`
	EntityType  EntityType    `json:"entity_type"`
	EntityID    string        `json:"entity_id"`
	Date        time.Time     `json:"date"`
	Window      InsightWindow `json:"window"`
	Impressions int64         `json:"impressions"`
	Clicks      int64         `json:"clicks"`
	Spend       float64       `json:"spend"`
	CTR         float64       `json:"ctr"`
	CPC         float64       `json:"cpc"`
	CPM         float64       `json:"cpm"`
	Likes       int64         `json:"likes"`
	Comments    int64         `json:"comments"`
	Shares      int64         `json:"shares"`
	Saves       int64         `json:"saves"`
	VideoViews  int64         `json:"video_views"`
	RawActions  Metadata      `json:"raw_actions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsSameDay compara apenas ano/mês/dia, ignorando hora e fuso.
func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
