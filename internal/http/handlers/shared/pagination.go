package shared

// 分页参数边界
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePagination 把请求里的分页参数收敛到合法区间，
// 页码最小为 1，每页条数缺省 20、上限 100。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
