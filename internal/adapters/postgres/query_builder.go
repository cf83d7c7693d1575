package postgres

import (
	"fmt"
	"strings"

	"analysis-service/internal/core/port"
)

// usableAreaExpr - полезная площадь записи: внутренняя, если известна, иначе общая
const usableAreaExpr = "COALESCE(internal_area, total_area)"

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: []string{"asking_price > 0"},
		args:       make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) addStatic(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

// build создает WHERE-часть запроса и аргументы
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applyComparableFilter разбирает фильтр сопоставимых объектов и строит запрос.
// Локация сравнивается подстрокой без учета регистра, как в исходных данных.
func applyComparableFilter(filter port.ComparableFilter) *queryBuilder {
	qb := newQueryBuilder()

	if filter.Locality != "" {
		qb.addCondition("location ILIKE $%d", "%"+filter.Locality+"%")
	}
	if filter.PropertyType != nil {
		qb.addCondition("property_type = $%d", string(*filter.PropertyType))
	}

	if filter.AreaMin != nil {
		qb.addCondition(usableAreaExpr+" >= $%d", *filter.AreaMin)
	}
	if filter.AreaMax != nil {
		qb.addCondition(usableAreaExpr+" <= $%d", *filter.AreaMax)
	}
	if filter.AreaMin != nil || filter.AreaMax != nil {
		qb.addStatic(usableAreaExpr + " > 0")
	}

	if filter.PriceMin != nil {
		qb.addCondition("asking_price >= $%d", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb.addCondition("asking_price <= $%d", *filter.PriceMax)
	}

	if filter.ListedWithin != nil {
		qb.addCondition("created_at >= $%d", filter.ListedWithin.From)
		qb.addCondition("created_at < $%d", filter.ListedWithin.To)
	}

	if filter.OnlyCompleted {
		qb.addStatic("status = 'completed'")
	}
	if filter.OnlyActive {
		qb.addStatic("is_active = true")
	}

	if filter.ExcludeID != nil {
		qb.addCondition("id <> $%d", *filter.ExcludeID)
	}

	return qb
}
