package render

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

type item struct {
	Name  string  `json:"name" yaml:"name"`
	Count int     `json:"count" yaml:"count"`
	Note  *string `json:"note,omitempty" yaml:"note,omitempty"`
}

type inventory struct {
	Items []item `json:"items" yaml:"items"`
}

func (i inventory) String() string { return "inventory of " + i.Items[0].Name }

func (i inventory) Header() []string { return []string{"Name", "Count"} }

func (i inventory) Rows() [][]string {
	var rows [][]string
	for _, it := range i.Items {
		rows = append(rows, []string{it.Name, strings.Repeat("*", it.Count)})
	}
	return rows
}

var sample = inventory{Items: []item{{Name: "yarn", Count: 2}, {Name: "tennis ball", Count: 1}}}

func TestRenderText(t *testing.T) {
	RegisterTestingT(t)

	out, err := Render(FormatText, sample)
	Expect(err).To(BeNil())
	Expect(out).To(Equal("inventory of yarn\n"))

	out, err = Render("", struct{ A int }{A: 1})
	Expect(err).To(BeNil())
	Expect(out).To(Equal("{A:1}\n"))
}

func TestRenderJSON(t *testing.T) {
	RegisterTestingT(t)

	out, err := Render(FormatJSON, sample)
	Expect(err).To(BeNil())
	Expect(out).To(MatchJSON(`{"items":[{"name":"yarn","count":2},{"name":"tennis ball","count":1}]}`))
	Expect(out).To(HaveSuffix("\n"))
}

func TestRenderYAML(t *testing.T) {
	RegisterTestingT(t)

	out, err := Render("YAML", sample)
	Expect(err).To(BeNil())
	Expect(out).To(MatchYAML("items:\n- name: yarn\n  count: 2\n- name: tennis ball\n  count: 1\n"))
}

func TestRenderTable(t *testing.T) {
	RegisterTestingT(t)

	out, err := Render(FormatTable, sample)
	Expect(err).To(BeNil())
	Expect(out).To(ContainSubstring("Name"))
	Expect(out).To(ContainSubstring("tennis ball"))
	Expect(strings.Index(out, "yarn")).To(BeNumerically("<", strings.Index(out, "tennis ball")))

	again, err := Render(FormatTable, sample)
	Expect(err).To(BeNil())
	Expect(again).To(Equal(out))

	_, err = Render(FormatTable, item{Name: "x"})
	Expect(err).To(MatchError(ContainSubstring("cannot be rendered as a table")))
}

func TestTableStyle(t *testing.T) {
	RegisterTestingT(t)

	Expect(tableStyle(0, 1).GetBold()).To(BeTrue())
	Expect(tableStyle(1, 1).GetBold()).To(BeFalse())
	Expect(tableStyle(2, 0).GetBold()).To(BeFalse())
}

func TestWrite(t *testing.T) {
	RegisterTestingT(t)

	var buf bytes.Buffer
	Expect(Write(&buf, FormatText, sample)).To(Succeed())
	Expect(buf.String()).To(Equal("inventory of yarn\n"))
}

func TestWriteUnknownFormat(t *testing.T) {
	RegisterTestingT(t)

	var buf bytes.Buffer
	err := Write(&buf, "xml", sample)
	Expect(err).To(MatchError(ContainSubstring(`unknown output format "xml"`)))
	Expect(buf.Len()).To(BeZero())
}
