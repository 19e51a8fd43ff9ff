// Package tabskema provides:
//
// - Typed table schemas (Field/Schema) bound to the codecs of package codec
// - A stable error model via Error/Errors (type, tags, note, row/field position)
// - Reports (Report/ReportTask) produced by package validate
// - Layout descriptions shared by the detector and the resource reader
//
// Design policy:
// - Keep only public data types in the root package; put inference under detect/,
// row handling under resource/, and the validation engine under validate/.
// - Cell-level problems never return an error: they come back as Notes from
// Field.ReadCell. Construction problems return Errors.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg := codec.NewRegistry()
//	det, _ := detect.New(reg, detect.Options{})
//	res := &resource.Resource{Name: "people", Source: resource.Inline(rows), Detector: det}
//	report := validate.Validate(ctx, res, validate.Options{})
package tabskema
