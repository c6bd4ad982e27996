package sentencing

import "strconv"

// Field names a column of the sentencing table. Names are exact and case-sensitive.
type Field string

const (
	FieldSentenceYear          Field = "SENTENCE_YEAR"
	FieldSentenceType          Field = "SENTENCE_TYPE"
	FieldSentenceImposedMonths Field = "SENTENCE_IMPOSED_MONTHS"
	FieldRace                  Field = "RACE"
	FieldGender                Field = "GENDER"
	FieldAgeGroup              Field = "AGE_GROUP"

	// Offense metadata, carried but not analysed
	FieldOffense              Field = "OFFENSE"
	FieldOffenseType          Field = "OFFENSE_TYPE"
	FieldHomicideType         Field = "HOMICIDE_TYPE"
	FieldOffenseSeverityGroup Field = "OFFENSE_SEVERITY_GROUP"
)

// RequiredFields must be present in every input table.
var RequiredFields = []Field{
	FieldSentenceYear,
	FieldSentenceType,
	FieldSentenceImposedMonths,
	FieldRace,
	FieldGender,
	FieldAgeGroup,
}

// OptionalFields are read when present.
var OptionalFields = []Field{
	FieldOffense,
	FieldOffenseType,
	FieldHomicideType,
	FieldOffenseSeverityGroup,
}

// DemographicFields are the categories the pipelines test against outcomes.
var DemographicFields = []Field{FieldRace, FieldGender, FieldAgeGroup}

func (f Field) String() string { return string(f) }

// Record is one sentencing case. Records are immutable once loaded.
type Record struct {
	SentenceYear          int
	SentenceType          string
	SentenceImposedMonths float64
	MonthsRaw             string
	HasMonths             bool

	Race     string
	Gender   string
	AgeGroup string

	Offense              string
	OffenseType          string
	HomicideType         string
	OffenseSeverityGroup string
}

// Value returns the categorical view of a field. The boolean is false when
// the field is blank or unknown, mirroring how a missing cell drops out of a
// cross tabulation.
func (r Record) Value(f Field) (string, bool) {
	var v string
	switch f {
	case FieldSentenceYear:
		v = strconv.Itoa(r.SentenceYear)
	case FieldSentenceType:
		v = r.SentenceType
	case FieldSentenceImposedMonths:
		if !r.HasMonths {
			return "", false
		}
		v = strconv.FormatFloat(r.SentenceImposedMonths, 'g', -1, 64)
	case FieldRace:
		v = r.Race
	case FieldGender:
		v = r.Gender
	case FieldAgeGroup:
		v = r.AgeGroup
	case FieldOffense:
		v = r.Offense
	case FieldOffenseType:
		v = r.OffenseType
	case FieldHomicideType:
		v = r.HomicideType
	case FieldOffenseSeverityGroup:
		v = r.OffenseSeverityGroup
	default:
		return "", false
	}
	return v, v != ""
}

// Numeric returns the numeric view of a field.
func (r Record) Numeric(f Field) (float64, bool) {
	switch f {
	case FieldSentenceYear:
		return float64(r.SentenceYear), true
	case FieldSentenceImposedMonths:
		return r.SentenceImposedMonths, r.HasMonths
	default:
		return 0, false
	}
}

// Subgroup is the set of records for one (year, category) pair.
type Subgroup []Record
