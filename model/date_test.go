package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate(t *testing.T) {
	t.Run("Valid year only", func(t *testing.T) {
		date, err := NewDate(1914, 0, 0)
		assert.NoError(t, err, "Expected NewDate to not return an error")
		assert.Equal(t, PrecisionYear, date.Precision, "Expected year precision")
		assert.Equal(t, 1914, date.Year, "Expected year to match")
	})

	t.Run("Valid year and month", func(t *testing.T) {
		date, err := NewDate(1916, 3, 0)
		assert.NoError(t, err)
		assert.Equal(t, PrecisionMonth, date.Precision, "Expected month precision")
	})

	t.Run("Valid full date", func(t *testing.T) {
		date, err := NewDate(1918, 11, 11)
		assert.NoError(t, err)
		assert.Equal(t, PrecisionDay, date.Precision, "Expected day precision")
	})

	t.Run("Day without month is invalid", func(t *testing.T) {
		_, err := NewDate(234, 0, 1)
		assert.Error(t, err, "Expected error for day without month")
	})

	t.Run("Year out of range", func(t *testing.T) {
		_, err := NewDate(999999, 0, 0)
		assert.Error(t, err, "Expected error for year above MaxYear")

		_, err = NewDate(-999999, 0, 0)
		assert.Error(t, err, "Expected error for year below MinYear")
	})

	t.Run("Month and day out of range", func(t *testing.T) {
		_, err := NewDate(1234, 13, 0)
		assert.Error(t, err, "Expected error for month 13")

		_, err = NewDate(1234, 12, 32)
		assert.Error(t, err, "Expected error for day 32")
	})
}

func TestDateCompare(t *testing.T) {
	date := func(y, m, d int) Date {
		date, err := NewDate(y, m, d)
		require.NoError(t, err)
		return date
	}

	t.Run("Year only comparison", func(t *testing.T) {
		assert.Negative(t, date(234, 0, 0).Compare(date(4321, 0, 0)))
		assert.Positive(t, date(4321, 0, 0).Compare(date(234, 0, 0)))
		assert.Zero(t, date(234, 0, 0).Compare(date(234, 0, 0)))
	})

	t.Run("Missing month sorts earliest within a year", func(t *testing.T) {
		yearOnly := date(1914, 0, 0)
		withMonth := date(1914, 6, 0)
		withDay := date(1914, 6, 28)

		assert.Negative(t, yearOnly.Compare(withMonth), "Expected 1914 before 1914-06")
		assert.Negative(t, withMonth.Compare(withDay), "Expected 1914-06 before 1914-06-28")
		assert.Negative(t, yearOnly.Compare(withDay), "Expected 1914 before 1914-06-28")
	})

	t.Run("Missing month ties with January the 1st", func(t *testing.T) {
		assert.Zero(t, date(1914, 0, 0).Compare(date(1914, 1, 1)))
	})

	t.Run("One day difference", func(t *testing.T) {
		assert.True(t, date(234, 1, 1).Before(date(234, 1, 2)))
	})

	t.Run("Negative years sort before positive", func(t *testing.T) {
		assert.True(t, date(-450, 0, 0).Before(date(1914, 0, 0)))
	})
}

func TestDateCompareAtSharedPrecision(t *testing.T) {
	date := func(y, m, d int) Date {
		date, err := NewDate(y, m, d)
		require.NoError(t, err)
		return date
	}

	t.Run("Mixed precision ties within shared components", func(t *testing.T) {
		assert.Zero(t, date(1914, 0, 0).CompareAtSharedPrecision(date(1914, 6, 28)))
		assert.Zero(t, date(1914, 6, 28).CompareAtSharedPrecision(date(1914, 0, 0)))
		assert.Zero(t, date(1914, 6, 0).CompareAtSharedPrecision(date(1914, 6, 28)))
	})

	t.Run("Shared components still order", func(t *testing.T) {
		assert.Negative(t, date(1913, 0, 0).CompareAtSharedPrecision(date(1914, 6, 28)))
		assert.Positive(t, date(1914, 7, 0).CompareAtSharedPrecision(date(1914, 6, 28)))
		assert.Negative(t, date(1914, 6, 27).CompareAtSharedPrecision(date(1914, 6, 28)))
	})

	t.Run("Full precision matches Compare", func(t *testing.T) {
		assert.Zero(t, date(1914, 6, 28).CompareAtSharedPrecision(date(1914, 6, 28)))
		assert.Positive(t, date(1914, 6, 28).CompareAtSharedPrecision(date(1914, 6, 27)))
	})
}

func TestDateFormat(t *testing.T) {
	t.Run("Long format", func(t *testing.T) {
		date, err := NewDate(1918, 11, 11)
		require.NoError(t, err)
		assert.Equal(t, "11 Nov 1918", date.LongFormat())

		date, err = NewDate(1916, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, "Mar 1916", date.LongFormat())

		date, err = NewDate(1914, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "1914", date.LongFormat())
	})

	t.Run("Short format", func(t *testing.T) {
		date, err := NewDate(1918, 11, 11)
		require.NoError(t, err)
		assert.Equal(t, "11 / 11 / 1918", date.ShortFormat())

		date, err = NewDate(1914, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "- / - / 1914", date.ShortFormat())
	})
}

func TestDateUnmarshalJSON(t *testing.T) {
	t.Run("Null month and day mean unset", func(t *testing.T) {
		var date Date
		err := json.Unmarshal([]byte(`{"year":1914,"month":null,"day":null}`), &date)
		assert.NoError(t, err)
		assert.Equal(t, PrecisionYear, date.Precision)
	})

	t.Run("Full date", func(t *testing.T) {
		var date Date
		err := json.Unmarshal([]byte(`{"year":1918,"month":11,"day":11}`), &date)
		assert.NoError(t, err)
		assert.Equal(t, PrecisionDay, date.Precision)
		assert.Equal(t, 11, date.Day)
	})

	t.Run("Day without month rejected", func(t *testing.T) {
		var date Date
		err := json.Unmarshal([]byte(`{"year":1918,"day":11}`), &date)
		assert.Error(t, err, "Expected error for day without month")
	})
}
