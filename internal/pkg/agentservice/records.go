package agentservice

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/export"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/airenas/refundo/internal/pkg/postgres"
	"github.com/airenas/refundo/internal/pkg/utils"
	"github.com/labstack/echo/v4"
)

const (
	prmFields = "fields"
	prmOrder  = "order"
	prmDesc   = "desc"
	prmLimit  = "limit"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	intColumns   = map[string]bool{"id": true, "age": true}
	floatColumns = map[string]bool{"salary": true, "amount": true}
)

func listEmployees(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("list employees")()
		q, err := parseQuery(c.QueryParams())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if projected(q) {
			return selectRows(c, data, postgres.TableEmployees, q)
		}
		res, err := data.DB.FindEmployees(c.Request().Context(), q.Filters)
		if err != nil {
			return dbError(err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func loadEmployee(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		res, err := data.DB.LoadEmployee(c.Request().Context(), id)
		if err != nil {
			return dbError(err)
		}
		if res == nil {
			return notFound("employee", id)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func topSalary(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := data.DB.TopSalaryEmployee(c.Request().Context())
		if err != nil {
			return dbError(err)
		}
		if res == nil {
			return echo.NewHTTPError(http.StatusNotFound, "no employees")
		}
		return c.JSON(http.StatusOK, res)
	}
}

type employeeInput struct {
	Name   string   `json:"name"`
	Age    *int     `json:"age"`
	Salary *float64 `json:"salary"`
}

func insertEmployee(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("insert employee")()
		var in employeeInput
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if strings.TrimSpace(in.Name) == "" || in.Age == nil || in.Salary == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "name, age and salary are required")
		}
		res, err := data.DB.InsertEmployee(c.Request().Context(),
			&persistence.Employee{Name: strings.TrimSpace(in.Name), Age: *in.Age, Salary: *in.Salary})
		if err != nil {
			return dbError(err)
		}
		goapp.Log.Info().Int64("ID", res.ID).Msg("employee inserted")
		return c.JSON(http.StatusCreated, res)
	}
}

func updateEmployee(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var in persistence.EmployeeUpdate
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.Name == nil && in.Age == nil && in.Salary == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
		}
		res, err := data.DB.UpdateEmployee(c.Request().Context(), id, &in)
		if err != nil {
			return dbError(err)
		}
		if res == nil {
			return notFound("employee", id)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func deleteEmployee(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		ok, err := data.DB.DeleteEmployee(c.Request().Context(), id)
		if err != nil {
			return dbError(err)
		}
		if !ok {
			return notFound("employee", id)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func listRefunds(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("list refunds")()
		q, err := parseQuery(c.QueryParams())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if projected(q) {
			return selectRows(c, data, postgres.TableRefunds, q)
		}
		res, err := data.DB.FindRefunds(c.Request().Context(), q.Filters)
		if err != nil {
			return dbError(err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func exportRefunds(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("export refunds")()
		res, err := data.DB.FindRefunds(c.Request().Context(), nil)
		if err != nil {
			return dbError(err)
		}
		var b bytes.Buffer
		if err := export.WriteRefunds(&b, res); err != nil {
			goapp.Log.Error().Err(err).Msg("can't export")
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=refunds.xlsx")
		return c.Blob(http.StatusOK, xlsxContentType, b.Bytes())
	}
}

func loadRefund(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		res, err := data.DB.LoadRefund(c.Request().Context(), id)
		if err != nil {
			return dbError(err)
		}
		if res == nil {
			return notFound("refund", id)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func updateRefund(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var in persistence.RefundUpdate
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong input")
		}
		if in.Name == nil && in.Amount == nil && in.ImageURL == nil && in.AudioURL == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
		}
		res, err := data.DB.UpdateRefund(c.Request().Context(), id, &in)
		if err != nil {
			return dbError(err)
		}
		if res == nil {
			return notFound("refund", id)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func selectRows(c echo.Context, data *Data, table string, q *persistence.Query) error {
	res, err := data.DB.Select(c.Request().Context(), table, q)
	if err != nil {
		return dbError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func projected(q *persistence.Query) bool {
	return len(q.Fields) > 0 || q.OrderBy != "" || q.Limit > 0
}

// parseQuery reads projection and filters from the url params.
// Filter form: column=value for equality or column.op=value, e.g. age.gt=30
func parseQuery(prms url.Values) (*persistence.Query, error) {
	res := &persistence.Query{}
	for k, vs := range prms {
		v := vs[0]
		switch k {
		case prmFields:
			for _, f := range strings.Split(v, ",") {
				if f = strings.TrimSpace(f); f != "" {
					res.Fields = append(res.Fields, f)
				}
			}
		case prmOrder:
			res.OrderBy = v
		case prmDesc:
			res.Desc = utils.ParamTrue(v)
		case prmLimit:
			l, err := strconv.Atoi(v)
			if err != nil || l < 1 {
				return nil, fmt.Errorf("wrong limit '%s'", v)
			}
			res.Limit = l
		default:
			f, err := parseFilter(k, v)
			if err != nil {
				return nil, err
			}
			res.Filters = append(res.Filters, f)
		}
	}
	sortFilters(res.Filters)
	return res, nil
}

func parseFilter(k, v string) (persistence.Filter, error) {
	col, op := k, persistence.OpEq
	if i := strings.LastIndex(k, "."); i > 0 {
		col, op = k[:i], persistence.Op(k[i+1:])
	}
	res := persistence.Filter{Column: col, Op: op, Value: v}
	if op == persistence.OpPrefix || op == persistence.OpContains {
		return res, nil
	}
	if intColumns[col] {
		iv, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return res, fmt.Errorf("wrong int value '%s' for '%s'", v, col)
		}
		res.Value = iv
	} else if floatColumns[col] {
		fv, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return res, fmt.Errorf("wrong number '%s' for '%s'", v, col)
		}
		res.Value = fv
	}
	return res, nil
}

// sortFilters makes the generated SQL stable, url params come as a map
func sortFilters(f []persistence.Filter) {
	sort.Slice(f, func(i, j int) bool {
		if f[i].Column != f[j].Column {
			return f[i].Column < f[j].Column
		}
		return f[i].Op < f[j].Op
	})
}
