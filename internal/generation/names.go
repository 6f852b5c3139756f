package generation

import (
	"math/rand"
	"sync"

	"github.com/jaswdr/faker"
)

// NameSource supplies customer display names
type NameSource interface {
	Name() string
}

// FakerNames draws names from faker using a caller-provided source
type FakerNames struct {
	mu   sync.Mutex
	fake faker.Faker
}

// NewFakerNames seeds faker with src so names are reproducible
func NewFakerNames(src rand.Source) *FakerNames {
	return &FakerNames{fake: faker.NewWithSeed(src)}
}

// Name returns a first and last name
func (n *FakerNames) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	person := n.fake.Person()
	return person.FirstName() + " " + person.LastName()
}
