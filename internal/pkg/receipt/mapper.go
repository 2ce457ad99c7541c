package receipt

import (
	"fmt"
	"path"
	"regexp"
	"strconv"

	"github.com/airenas/refundo/internal/pkg/utils"
)

// NameMapper maps receipt file names to refund request IDs
type NameMapper struct {
	rx *regexp.Regexp
}

// NewNameMapper creates mapper, the first group of the pattern must capture the ID
func NewNameMapper(pattern string) (*NameMapper, error) {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("can't compile '%s': %w", pattern, err)
	}
	if rx.NumSubexp() < 1 {
		return nil, fmt.Errorf("no ID group in '%s'", pattern)
	}
	return &NameMapper{rx: rx}, nil
}

// RefundID returns the ID of the refund row for the receipt image file
func (m *NameMapper) RefundID(name string) (int64, bool) {
	if !utils.SupportImageExt(name) {
		return 0, false
	}
	sm := m.rx.FindStringSubmatch(path.Base(name))
	if len(sm) < 2 {
		return 0, false
	}
	res, err := strconv.ParseInt(sm[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return res, true
}
