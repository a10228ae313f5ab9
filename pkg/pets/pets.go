package pets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/integrail/pets-cli/pkg/llm"
)

const DefaultPrompt = `
I have two pets.
A cat named Luna who is 5 years old and loves playing with yarn. She has grey fur.
I also have a 2 years old black cat named Loki who loves tennis ball.`

type Pet struct {
	Name         string  `json:"name" yaml:"name" jsonschema:"required"`
	Animal       string  `json:"animal" yaml:"animal" jsonschema:"required"`
	Age          int     `json:"age" yaml:"age" jsonschema:"required"`
	Color        *string `json:"color" yaml:"color"`
	FavouriteToy *string `json:"favourite_toy" yaml:"favourite_toy"`
}

type PetList struct {
	Pets []Pet `json:"pets" yaml:"pets" jsonschema:"required"`
}

// Messages is the single user turn sent for prompt.
func Messages(prompt string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: prompt}}
}

func (p Pet) String() string {
	return fmt.Sprintf("Pet{name: %s, animal: %s, age: %d, color: %s, favourite_toy: %s}",
		strconv.Quote(p.Name), strconv.Quote(p.Animal), p.Age, quoteOptional(p.Color), quoteOptional(p.FavouriteToy))
}

func (l PetList) String() string {
	return "PetList{pets: [" + strings.Join(lo.Map(l.Pets, func(p Pet, _ int) string {
		return p.String()
	}), ", ") + "]}"
}

func (l PetList) Header() []string {
	return []string{"Name", "Animal", "Age", "Color", "Favourite toy"}
}

func (l PetList) Rows() [][]string {
	return lo.Map(l.Pets, func(p Pet, _ int) []string {
		return []string{p.Name, p.Animal, strconv.Itoa(p.Age), lo.FromPtr(p.Color), lo.FromPtr(p.FavouriteToy)}
	})
}

func quoteOptional(s *string) string {
	if s == nil {
		return "nil"
	}
	return strconv.Quote(*s)
}
