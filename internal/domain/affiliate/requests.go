package affiliate

import "strings"

// Paging limits shared by all platforms
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage returns page, or DefaultPage when page is not positive
func NormalizePage(page int) int {
	if page <= 0 {
		return DefaultPage
	}
	return page
}

// NormalizePageSize returns size capped at MaxPageSize, or DefaultPageSize when not positive
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ---------------------------------------------------------------------------
// Operation Requests
// ---------------------------------------------------------------------------

// MaterialSearchRequest is the input of Platform.MaterialSearch.
// Zero values mean "not given"; each platform applies its own defaults.
type MaterialSearchRequest struct {
	Keyword string
	// Page is page_no (Taobao), page (Pinduoduo) or pageIndex (JD)
	Page int
	// PageSize defaults to 20 and is capped at 100
	PageSize int

	// AdzoneID overrides the configured Taobao adzone
	AdzoneID string
	// MaterialID is the Taobao material_id
	MaterialID string
	// Cat is the Taobao category list (comma separated)
	Cat string
	// Sort is the Taobao sort expression or JD sort direction (asc/desc)
	Sort string
	// SortName is the JD sort field
	SortName string
	// SortType is the Pinduoduo sort_type
	SortType *int
	// HasCoupon maps to has_coupon (Taobao), with_coupon (Pinduoduo), hasCoupon (JD)
	HasCoupon *bool
	// CatID is the Pinduoduo cat_id
	CatID int64
	// Cid1, Cid2, Cid3 are the JD category levels
	Cid1 int64
	Cid2 int64
	Cid3 int64
}

// LinkConvertRequest is the input of Platform.LinkConvert
type LinkConvertRequest struct {
	// Taobao: Content (tao password) wins over ItemID, which wins over URL
	Content string
	ItemID  string
	URL     string
	// AdzoneID overrides the configured Taobao adzone
	AdzoneID string

	// Pinduoduo: PID overrides the configured pid.
	// GoodsSignList takes priority over GoodsIDList.
	PID           string
	GoodsSignList []string
	GoodsIDList   []string
	GenerateWeApp bool

	// JD: MaterialID is the promotion material URL or SKU link.
	// UnionID and PositionID override the configured values.
	MaterialID string
	UnionID    string
	PositionID string
	// AutoSearch defaults to true when nil
	AutoSearch *bool
}

// ShopSearchRequest is the input of Platform.ShopSearch
type ShopSearchRequest struct {
	Keyword  string
	Page     int
	PageSize int

	// AdzoneID overrides the configured Taobao adzone
	AdzoneID string
	// MaterialID is the Taobao optimus material id (default "4093")
	MaterialID string
}

// ItemDetailRequest is the input of Platform.ItemDetail
type ItemDetailRequest struct {
	// ItemIDs are Taobao num_iids or JD sku ids
	ItemIDs []string
	// Platform is the Taobao platform flag (1 PC, 2 wireless; default 2)
	Platform int

	// Pinduoduo identifiers; GoodsSignList takes priority
	GoodsSignList []string
	GoodsIDList   []string
}

// JoinedItemIDs returns the non-empty item ids joined by commas
func (r *ItemDetailRequest) JoinedItemIDs() string {
	return joinNonEmpty(r.ItemIDs)
}

// joinNonEmpty joins trimmed non-empty values with commas
func joinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ",")
}

// CompactStrings drops empty entries, returning nil when nothing remains
func CompactStrings(values []string) []string {
	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
