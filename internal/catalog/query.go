package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/venuedash/catalog/internal/model"
)

// ErrInvalidQuery is returned when query parameters cannot be parsed.
var ErrInvalidQuery = errors.New("invalid query")

// Query parameter names accepted by ParseQuery.
const (
	ParamSearch      = "q"
	ParamGenre       = "genre"
	ParamCity        = "city"
	ParamCapacityMin = "capacity_min"
	ParamCapacityMax = "capacity_max"
	ParamSoldMin     = "sold_min"
	ParamSoldMax     = "sold_max"
	ParamVenueSize   = "venue_size"
	ParamSold        = "sold"
	ParamDateFrom    = "date_from"
	ParamDateTo      = "date_to"
	ParamTimeFrame   = "time_frame"
	ParamSort        = "sort"
)

// ParseQuery builds a Query from URL parameters. Absent or empty parameters
// add no filter. A range with only one bound is open on the other side.
func ParseQuery(values url.Values) (Query, error) {
	var q Query

	if s := strings.TrimSpace(values.Get(ParamSearch)); s != "" {
		q.Filters = append(q.Filters, Search{Text: s})
	}
	if g := values.Get(ParamGenre); g != "" {
		q.Filters = append(q.Filters, Genre{Name: g})
	}
	if c := values.Get(ParamCity); c != "" {
		q.Filters = append(q.Filters, City{Name: c})
	}

	capMin, hasCapMin, err := parseInt(values, ParamCapacityMin)
	if err != nil {
		return Query{}, err
	}
	capMax, hasCapMax, err := parseInt(values, ParamCapacityMax)
	if err != nil {
		return Query{}, err
	}
	if hasCapMin || hasCapMax {
		if !hasCapMax {
			capMax = math.MaxInt
		}
		if capMin > capMax {
			return Query{}, fmt.Errorf("%w: capacity_min > capacity_max", ErrInvalidQuery)
		}
		q.Filters = append(q.Filters, CapacityRange{Min: capMin, Max: capMax})
	}

	soldMin, hasSoldMin, err := parseFloat(values, ParamSoldMin)
	if err != nil {
		return Query{}, err
	}
	soldMax, hasSoldMax, err := parseFloat(values, ParamSoldMax)
	if err != nil {
		return Query{}, err
	}
	if hasSoldMin || hasSoldMax {
		if !hasSoldMax {
			soldMax = math.Inf(1)
		}
		if soldMin > soldMax {
			return Query{}, fmt.Errorf("%w: sold_min > sold_max", ErrInvalidQuery)
		}
		q.Filters = append(q.Filters, SoldRange{Min: soldMin, Max: soldMax})
	}

	if v := values.Get(ParamVenueSize); v != "" {
		size, err := ParseVenueSize(v)
		if err != nil {
			return Query{}, err
		}
		q.Filters = append(q.Filters, VenueSizeBucket{Size: size})
	}
	if v := values.Get(ParamSold); v != "" {
		level, err := ParseSoldLevel(v)
		if err != nil {
			return Query{}, err
		}
		q.Filters = append(q.Filters, SoldBucket{Level: level})
	}

	for _, p := range []string{ParamDateFrom, ParamDateTo} {
		v := values.Get(p)
		if v == "" {
			continue
		}
		d, err := model.ParseDate(v)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, p, err)
		}
		if p == ParamDateFrom {
			q.Filters = append(q.Filters, DateFrom{Date: d})
		} else {
			q.Filters = append(q.Filters, DateTo{Date: d})
		}
	}

	if v := values.Get(ParamTimeFrame); v != "" {
		tf, err := model.ParseTimeFrame(v)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		q.Filters = append(q.Filters, TimeFrameFilter{Frame: tf})
	}

	q.Sort, err = ParseSortKey(values.Get(ParamSort))
	if err != nil {
		return Query{}, err
	}

	return q, nil
}

func parseInt(values url.Values, key string) (int, bool, error) {
	v := values.Get(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be an integer", ErrInvalidQuery, key)
	}
	return n, true, nil
}

func parseFloat(values url.Values, key string) (float64, bool, error) {
	v := values.Get(key)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrInvalidQuery, key)
	}
	return f, true, nil
}
