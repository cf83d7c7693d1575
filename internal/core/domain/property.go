package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyType - тип объекта недвижимости
type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeVilla      PropertyType = "villa"
	TypeCommercial PropertyType = "commercial"
	TypeOffice     PropertyType = "office"
	TypeStudio     PropertyType = "studio"
	TypeLand       PropertyType = "land"
	TypeBusiness   PropertyType = "business"
	TypeUnknown    PropertyType = "unknown"
)

// Condition - состояние объекта
type Condition string

const (
	ConditionNew             Condition = "new"
	ConditionUsed            Condition = "used"
	ConditionNeedsRenovation Condition = "renovation_needed"
)

// AnalysisStatus - статус обработки записи об объекте
type AnalysisStatus string

const (
	StatusAnalyzing AnalysisStatus = "analyzing"
	StatusCompleted AnalysisStatus = "completed"
	StatusFailed    AnalysisStatus = "failed"
)

var (
	// ErrPropertyNotFound возвращается хранилищем, если записи с таким ID нет
	ErrPropertyNotFound = errors.New("property record not found")
	// ErrPropertyNotCompleted возвращается, если запись еще не прошла обработку
	// и анализировать ее рано
	ErrPropertyNotCompleted = errors.New("property record is not completed yet")
)

// PropertyRecord - неизменяемый снимок объекта недвижимости, входные данные анализа.
// Отсутствующие значения моделируются указателями: nil означает "данных нет",
// и зависящие от них вычисления пропускаются, а не считаются от нуля.
type PropertyRecord struct {
	ID           uuid.UUID
	Location     string // свободный текст, "Tirana, Blloku"
	Neighborhood *string
	PropertyType PropertyType
	AskingPrice  float64 // в одной валюте, без конвертаций

	TotalArea    *float64 // м²
	InternalArea *float64 // м², жилая/внутренняя
	Bedrooms     *int
	Bathrooms    *float64
	FloorLevel   string
	Condition    Condition
	Furnished    *bool
	HasElevator  *bool

	AgentName *string

	IsActive     bool
	Status       AnalysisStatus
	CreatedAt    time.Time
	RemovedAt    *time.Time
	DaysOnMarket *int
}

// UsableArea возвращает "полезную" площадь: внутреннюю, если она известна,
// иначе общую. false - если положительной площади нет вовсе.
func (r *PropertyRecord) UsableArea() (float64, bool) {
	if r.InternalArea != nil && *r.InternalArea > 0 {
		return *r.InternalArea, true
	}
	if r.TotalArea != nil && *r.TotalArea > 0 {
		return *r.TotalArea, true
	}
	return 0, false
}

// PricePerArea возвращает цену за м². Требует положительной цены и площади.
func (r *PropertyRecord) PricePerArea() (float64, bool) {
	area, ok := r.UsableArea()
	if !ok || r.AskingPrice <= 0 {
		return 0, false
	}
	return r.AskingPrice / area, true
}

// PrimaryLocality возвращает часть локации до первой запятой.
// Именно по ней выполняется подбор сопоставимых объектов.
func (r *PropertyRecord) PrimaryLocality() string {
	locality, _, _ := strings.Cut(r.Location, ",")
	return strings.TrimSpace(locality)
}
