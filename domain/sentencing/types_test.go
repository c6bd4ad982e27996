package sentencing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordValue(t *testing.T) {
	r := Record{
		SentenceYear:          2015,
		SentenceType:          "Prison",
		SentenceImposedMonths: 24.5,
		MonthsRaw:             "24.5",
		HasMonths:             true,
		Race:                  "Black",
		Gender:                "",
		AgeGroup:              "18-24",
	}

	v, ok := r.Value(FieldSentenceType)
	assert.True(t, ok)
	assert.Equal(t, "Prison", v)

	v, ok = r.Value(FieldSentenceImposedMonths)
	assert.True(t, ok)
	assert.Equal(t, "24.5", v)

	v, ok = r.Value(FieldSentenceYear)
	assert.True(t, ok)
	assert.Equal(t, "2015", v)

	_, ok = r.Value(FieldGender)
	assert.False(t, ok, "blank gender should drop out")

	_, ok = r.Value(Field("UNKNOWN"))
	assert.False(t, ok)
}

func TestRecordNumeric(t *testing.T) {
	r := Record{SentenceYear: 2012, SentenceImposedMonths: 12, HasMonths: true}

	m, ok := r.Numeric(FieldSentenceImposedMonths)
	assert.True(t, ok)
	assert.Equal(t, 12.0, m)

	_, ok = Record{}.Numeric(FieldSentenceImposedMonths)
	assert.False(t, ok)

	_, ok = r.Numeric(FieldRace)
	assert.False(t, ok)

	_, ok = Record{}.Value(FieldSentenceImposedMonths)
	assert.False(t, ok)
}
