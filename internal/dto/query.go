package dto

// ── 查询/统计模块 DTO ──

// StatusCountsResponse 两类实体的状态计数
type StatusCountsResponse struct {
	Absences map[string]int64 `json:"absences"` // pending / approved / rejected
	Offers   map[string]int64 `json:"offers"`   // available / taken / expired
}

// SearchResponse 全文检索结果（按实体类型分组）
type SearchResponse struct {
	Absences []AbsenceReportResponse `json:"absences"`
	Offers   []MarketOfferResponse   `json:"offers"`
}
