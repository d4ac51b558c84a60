package filter_test

import (
	"fmt"
	"testing"

	"github.com/datanimbus/omni-crudder/filter"
)

func TestDollarPlaceholders(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		startAt   int
		want      string
		err       error
	}{
		{
			"single placeholder",
			`name = ?`,
			1,
			`name = $1`,
			nil,
		},
		{
			"numbering follows text order",
			`name = ? AND age >= ?`,
			1,
			`name = $1 AND age >= $2`,
			nil,
		},
		{
			"offset start",
			`name = ? AND age >= ?`,
			10,
			`name = $10 AND age >= $11`,
			nil,
		},
		{
			"in list",
			`age = ? AND status IN (?, ?, ?)`,
			1,
			`age = $1 AND status IN ($2, $3, $4)`,
			nil,
		},
		{
			"no placeholders",
			`deleted_at IS NULL`,
			1,
			`deleted_at IS NULL`,
			nil,
		},
		{
			"empty condition",
			``,
			1,
			``,
			nil,
		},
		{
			"zero start",
			`name = ?`,
			0,
			``,
			fmt.Errorf("startAt must be greater than 0"),
		},
		{
			"negative start",
			`name = ?`,
			-123,
			``,
			fmt.Errorf("startAt must be greater than 0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.DollarPlaceholders(tt.condition, tt.startAt)
			if err != nil && (tt.err == nil || err.Error() != tt.err.Error()) {
				t.Errorf("DollarPlaceholders() error = %v, wantErr %v", err, tt.err)
				return
			}
			if err == nil && tt.err != nil {
				t.Errorf("DollarPlaceholders() error = nil, wantErr %v", tt.err)
				return
			}
			if got != tt.want {
				t.Errorf("DollarPlaceholders() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ExampleDollarPlaceholders() {
	c := filter.NewConverter()
	conditions, values, err := c.Convert([]byte(`{"title": "Jurassic Park", "year": {"$gte": 1990}}`))
	if err != nil {
		panic(err)
	}
	conditions, err = filter.DollarPlaceholders(conditions, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(conditions, values)
	// Output: title = $1 AND year >= $2 [Jurassic Park 1990]
}
