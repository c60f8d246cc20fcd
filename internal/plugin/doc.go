// Package plugin turns transform functions into named, observable pipeline
// steps and chains them into sequences.
//
// A step receives Props, returns a Result that is shallow-merged into a new
// Props, and reports its lifecycle on the run's Reporter. Steps run one at a
// time in declared order.
package plugin
