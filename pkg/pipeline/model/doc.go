// Package model holds the types shared by the pipeline and its observers: the
// description of a stage and the hooks an observer receives while photos flow
// through the stages.
package model
