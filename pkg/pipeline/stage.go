package pipeline

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/autopassphoto/passphoto/pkg/export"
	"github.com/autopassphoto/passphoto/pkg/faults"
	"github.com/autopassphoto/passphoto/pkg/photo"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
	"github.com/autopassphoto/passphoto/pkg/segment"
	"github.com/autopassphoto/passphoto/pkg/sheet"
	"github.com/autopassphoto/passphoto/pkg/watermark"
)

// Stage names, in execution order.
const (
	StageSegment      = "segment"
	StagePlaceOnWhite = "place_on_white"
	StageEnhance      = "enhance"
	StageResize       = "resize"
	StageBuildSheet   = "build_sheet"
	StageWatermark    = "watermark"
	StageExport       = "export"
)

// Stages lists the stage names in execution order.
func Stages() []string {
	return []string{
		StageSegment,
		StagePlaceOnWhite,
		StageEnhance,
		StageResize,
		StageBuildSheet,
		StageWatermark,
		StageExport,
	}
}

// job carries one photo through the stages. Every stage reads the field set by the
// previous one and sets its own.
type job struct {
	input  string
	prefix string

	cutout   image.Image
	flat     *image.NRGBA
	enhanced *image.NRGBA
	photo    *image.NRGBA
	sheet    *image.NRGBA
	grid     sheet.Grid
	marked   *image.NRGBA
	outputs  []string
}

type stage struct {
	info *model.StageInfo
	run  func(ctx context.Context, j *job) error
}

func (p *Pipeline) buildStages() []stage {
	fns := map[string]func(ctx context.Context, j *job) error{
		StageSegment:      p.segment,
		StagePlaceOnWhite: p.placeOnWhite,
		StageEnhance:      p.enhance,
		StageResize:       p.resize,
		StageBuildSheet:   p.buildSheet,
		StageWatermark:    p.watermark,
		StageExport:       p.export,
	}

	names := Stages()
	stages := make([]stage, len(names))
	for i, name := range names {
		stages[i] = stage{
			info: &model.StageInfo{Name: name, Index: i + 1},
			run:  fns[name],
		}
	}

	return stages
}

func (p *Pipeline) segment(ctx context.Context, j *job) error {
	raw, err := readInput(j.input)
	if err != nil {
		return err
	}

	j.cutout, err = segment.Decode(ctx, p.seg, raw)

	return err
}

func readInput(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrapf(faults.ErrResourceUnavailable, err, "unable to open input %s", path)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, faults.Wrapf(faults.ErrIOFailure, err, "unable to read input %s", path)
	}

	return raw, nil
}

func (p *Pipeline) placeOnWhite(_ context.Context, j *job) error {
	var err error
	j.flat, err = photo.PlaceOnOpaque(j.cutout, p.cfg.BackgroundColor())

	return err
}

func (p *Pipeline) enhance(_ context.Context, j *job) error {
	j.enhanced = photo.Enhance(j.flat, p.cfg.Enhance)

	return nil
}

func (p *Pipeline) resize(_ context.Context, j *job) error {
	size := p.cfg.PhotoPx()

	resized, err := photo.ResizeExact(j.enhanced, size.X, size.Y)
	if err != nil {
		return errors.Wrap(err, "unable to resize photo")
	}
	j.photo = resized

	return nil
}

func (p *Pipeline) buildSheet(_ context.Context, j *job) error {
	j.sheet, j.grid = sheet.Build(j.photo, sheet.Options{
		Size:        p.cfg.SheetPx(),
		Margin:      p.cfg.MarginPx(),
		Gap:         p.cfg.GapPx(),
		Background:  p.cfg.BackgroundColor(),
		BorderColor: p.cfg.BorderColor(),
		BorderWidth: p.cfg.Border.WidthPx,
	})
	p.logger.Printf("%s: %d photos on the sheet (%d columns, %d rows)", j.input, j.grid.Tiles(), j.grid.Columns, j.grid.Rows)

	return nil
}

func (p *Pipeline) watermark(_ context.Context, j *job) error {
	marked, info, err := watermark.Apply(j.sheet, watermark.Options{
		Text:       p.cfg.Watermark.Text,
		FontPath:   p.cfg.Watermark.Font,
		FontSizePx: float64(p.cfg.FontPx()),
		Color:      p.cfg.WatermarkColor(),
		MarginPx:   p.cfg.TextMarginPx(),
		Logger:     p.logger,
	})
	if err != nil {
		return err
	}
	if info.Fallback {
		p.logger.Printf("%s: watermark drawn with the built-in font", j.input)
	}
	j.marked = marked

	return nil
}

func (p *Pipeline) export(_ context.Context, j *job) error {
	out := p.cfg.Output

	photoPath := filepath.Join(out.Dir, j.prefix+out.Photo)
	err := export.WriteJPEG(photoPath, j.photo, p.cfg.DPI, out.Quality)
	if err != nil {
		return err
	}
	j.outputs = append(j.outputs, photoPath)

	sheetJPEG, err := export.EncodeJPEG(j.marked, p.cfg.DPI, out.Quality)
	if err != nil {
		return faults.Wrap(faults.ErrIOFailure, err, "unable to encode sheet")
	}

	sheetPath := filepath.Join(out.Dir, j.prefix+out.Sheet)
	err = export.WriteFile(sheetPath, sheetJPEG)
	if err != nil {
		return err
	}
	j.outputs = append(j.outputs, sheetPath)

	if !out.WritePDF {
		return nil
	}

	pdfPath := filepath.Join(out.Dir, j.prefix+out.PDF)
	err = export.WritePDF(pdfPath, sheetJPEG, p.cfg.Sheet.WidthCm, p.cfg.Sheet.HeightCm)
	if err != nil {
		return err
	}
	j.outputs = append(j.outputs, pdfPath)

	return nil
}
