package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/mlcli/core/frame"
)

var na = math.NaN()

func nums(xs ...float64) []frame.Value {
	out := make([]frame.Value, len(xs))
	for i, x := range xs {
		out[i] = frame.Num(x)
	}
	return out
}

func strs(ss ...string) []frame.Value {
	out := make([]frame.Value, len(ss))
	for i, s := range ss {
		if s == "" {
			out[i] = frame.Missing()
			continue
		}
		out[i] = frame.Str(s)
	}
	return out
}

func col(name string, vals []frame.Value) frame.Column {
	return frame.Column{Name: name, Values: vals}
}

// passengers is a seven-row sample in the raw input schema, minus the target.
func passengers() *frame.Table {
	return frame.MustNew(
		col("PassengerId", nums(1, 2, 3, 4, 5, 6, 7)),
		col("Pclass", nums(3, 1, 3, 1, 3, 3, 1)),
		col("Name", strs(
			"Braund, Mr. Owen Harris",
			"Cumings, Mrs. John Bradley (Florence Briggs Thayer)",
			"Heikkinen, Miss. Laina",
			"Futrelle, Mrs. Jacques Heath (Lily May Peel)",
			"Allen, Mr. William Henry",
			"Moran, Master. James",
			"Uruchurtu, Don. Manuel E",
		)),
		col("Sex", strs("male", "female", "female", "female", "male", "male", "male")),
		col("Age", nums(22, 38, 26, 35, na, na, 45)),
		col("SibSp", nums(1, 1, 0, 1, 0, 0, 0)),
		col("Parch", nums(0, 0, 0, 0, 0, 0, 0)),
		col("Ticket", strs("A/5 21171", "PC 17599", "STON/O2. 3101282", "113803", "373450", "330877", "PC 17601")),
		col("Fare", nums(7.25, 71.2833, 7.925, 53.1, 8.05, 8.4583, 27.7208)),
		col("Cabin", strs("", "C85", "", "C123", "", "", "")),
		col("Embarked", strs("S", "C", "S", "S", "", "Q", "C")),
	)
}
