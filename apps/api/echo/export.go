package echoapi

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type csvColumn struct {
	name  string
	index []int
}

// csvColumns lists the JSON fields of the record type t, in declaration order.
func csvColumns(t reflect.Type) []csvColumn {
	var cols []csvColumn
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, csvColumn{name: name, index: f.Index})
	}
	return cols
}

// csvValue renders v the way it is rendered in JSON, without quotes.
func csvValue(v reflect.Value) (string, error) {
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return "", err
	}
	switch s := string(b); {
	case s == "null":
		return "", nil
	case strings.HasPrefix(s, `"`):
		return strconv.Unquote(s)
	default:
		return s, nil
	}
}

func writeCSV[R any](ctx echo.Context, entity string, rows []R) error {
	cols := csvColumns(reflect.TypeOf((*R)(nil)).Elem())

	filename := fmt.Sprintf("%s-%s.csv", entity, time.Now().Format("20060102"))
	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	resp.WriteHeader(http.StatusOK)

	w := csv.NewWriter(resp)
	header := make([]string, 0, len(cols))
	for _, c := range cols {
		header = append(header, c.name)
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for i := range rows {
		rv := reflect.ValueOf(rows[i])
		line := make([]string, 0, len(cols))
		for _, c := range cols {
			val, err := csvValue(rv.FieldByIndex(c.index))
			if err != nil {
				return errors.Wrapf(err, "rendering %s", c.name)
			}
			line = append(line, val)
		}
		if err := w.Write(line); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flushing csv")
}
