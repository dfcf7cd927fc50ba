// Package gen holds the intermediate representation of a schema set and
// the generation pipeline that turns it into source artifacts.
//
// The pipeline is strictly linear: raw documents from compiler/load are
// parsed into Entity nodes (NewGraph), the full set is validated with
// all diagnostics accumulated, and only a fully valid graph reaches the
// emitters. Generation is a pure function of the IR: the same schema
// input always produces byte-identical artifacts.
package gen
