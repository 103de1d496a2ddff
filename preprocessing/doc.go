// Package preprocessing implements the feature engineering that turns the
// raw passenger table into the numeric table the classifier consumes.
//
// The column primitives (DropColumns, DeriveColumn, SumColumns, BinColumn,
// ImputeGlobal, ImputeGroupedMean) are stateless and each returns a new
// table. OneHotEncoder carries the one piece of fitted state, the category
// vocabulary, so that training and inference encode identically. Pipeline
// composes them in a fixed order.
package preprocessing
