// Package gbdt implements a gradient-boosted decision tree classifier for
// binary labels.
//
// Trees are grown depth-wise with exact greedy splits on gradient and
// hessian sums of the logistic loss. Missing feature values (NaN) are routed
// along a learned default direction at every split, so encoded tables with
// gaps can be fed directly.
//
// Example:
//
//	clf := gbdt.NewClassifier(gbdt.DefaultParams(), logger)
//	if err := clf.Fit(features, labels); err != nil {
//	    return err
//	}
//	proba, err := clf.PredictProba(test)
package gbdt
