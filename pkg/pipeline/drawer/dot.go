package drawer

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/autopassphoto/passphoto/internal/store"
	"github.com/autopassphoto/passphoto/pkg/pipeline/measure"
	"github.com/autopassphoto/passphoto/pkg/pipeline/model"
)

const xlabel = "xlabel"

// DOTDrawer writes the stage graph as a Graphviz DOT file.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       store.CustomStore[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	s := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		store:       s,
		graph:       graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.PreventCycles()),
	}
}

// AddStage adds a stage to the pipeline graph. Adding a stage twice is a no-op.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// Draw creates the DOT file.
func (d *DOTDrawer) Draw() (err error) {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "unable to close file %s", d.dotFileName)
		}
	}()

	err = d.Render(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

// Render writes the DOT description of the graph to wrt.
func (d *DOTDrawer) Render(wrt io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return errors.Wrap(err, "unable to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// SetTotalTime appends the time elapsed since start to the label of the stage.
func (d *DOTDrawer) SetTotalTime(stageName string, start time.Time) error {
	total := time.Since(start).Round(time.Millisecond).String()

	err := d.store.UpdateVertex(stageName, func(p *graph.VertexProperties) {
		appendLabel(p, "total: "+total)
	})
	if err != nil {
		return errors.Wrapf(err, "unable to set total time of %s", stageName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure labels every stage with its average duration and colours every link by
// the duration of the stage it leads to, blue for the fastest and red for the slowest.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var fastest, slowest time.Duration

	first := true
	for name, mt := range metrics {
		if name == model.StartStage.Name || name == model.EndStage.Name {
			continue
		}

		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		if first || avg < fastest {
			fastest = avg
		}
		if first || avg > slowest {
			slowest = avg
		}
		first = false
	}

	err := d.updateStages(metrics)
	if err != nil {
		return errors.Wrap(err, "unable to update stages")
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		mt, ok := metrics[edge.Target]
		if !ok || edge.Target == model.EndStage.Name || mt.AVGDuration() == 0 {
			continue
		}

		avg := mt.AVGDuration()
		hex, err := heat(avg, fastest, slowest)
		if err != nil {
			return err
		}

		err = d.graph.UpdateEdge(edge.Source, edge.Target,
			graph.EdgeAttribute("label", avg.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", hex),
		)
		if err != nil {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

func (d *DOTDrawer) updateStages(metrics map[string]measure.Metric) error {
	for name, mt := range metrics {
		options := []func(*graph.VertexProperties){graph.VertexWeight(int(mt.Count()))}

		if avg := mt.AVGDuration(); avg != 0 {
			options = append(options, graph.VertexAttribute(xlabel, avg.String()))
		}

		if failures := mt.Failures(); failures > 0 {
			options = append(options,
				graph.VertexAttribute("color", "red"),
				graph.VertexAttribute("fontcolor", "red"),
				func(p *graph.VertexProperties) {
					appendLabel(p, fmt.Sprintf("failed: %d", failures))
				},
			)
		}

		err := d.store.UpdateVertex(name, options...)
		if err != nil {
			return errors.Wrapf(err, "unable to update vertex %s", name)
		}
	}

	return nil
}

func appendLabel(p *graph.VertexProperties, text string) {
	if current := p.Attributes[xlabel]; current != "" {
		text = current + ", " + text
	}

	p.Attributes[xlabel] = text
}

func heat(value, fastest, slowest time.Duration) (string, error) {
	fraction := 1.0
	if slowest > fastest {
		fraction = float64(value-fastest) / float64(slowest-fastest)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	c, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return c.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

// generateDOT lists the vertices, then the edges, in the order they were added.
func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   map[string]string{"rankdir": "TB"},
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	vertices, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}

	for _, vertex := range vertices {
		_, properties, err := d.store.Vertex(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(properties.Attributes))
		htmlAttributes := make(map[string]string)

		for k, v := range properties.Attributes {
			if k == xlabel {
				htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)

				continue
			}

			attributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     properties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
