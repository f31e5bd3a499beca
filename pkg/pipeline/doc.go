// Package pipeline turns a portrait photograph into a printable passport-photo sheet.
//
// A photo goes through a fixed, linear list of stages: segment, place_on_white, enhance,
// resize, build_sheet, watermark and export. Each stage consumes the raster produced by
// the previous one. The first failing stage stops the run, and the failure is reported
// as a Result rather than a Go error, so a caller always gets a status it can print.
//
// Observers implementing model.PipelineOption are told about every stage: see
// measure.PipelineMeasure for timings, drawer.PipelineDrawer for a Graphviz view of the
// stages and PipelineLogger for a log line per stage.
//
// RunBatch processes several photos concurrently. Each photo still goes through the
// stages one after the other; only distinct photos overlap.
package pipeline
