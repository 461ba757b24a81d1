package inflector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"petrovich.ru/petrovich/types"
)

func TestFullName(t *testing.T) {
	engine := loadEngine(t)

	name := FullName{Last: "Иванов", First: "Пётр", Middle: "Сергеевич"}
	actual := engine.FullName(name, types.Male, types.Dative)
	assert.Equal(t, FullName{Last: "иванову", First: "петру", Middle: "сергеевичу"}, actual)
	assert.Equal(t, "иванову петру сергеевичу", actual.String())
}

func TestFullNameDetectsGender(t *testing.T) {
	engine := loadEngine(t)

	name := FullName{Last: "Иванова", First: "Мария", Middle: "Сергеевна"}
	actual := engine.FullName(name, types.Androgynous, types.Genitive)
	assert.Equal(t, "ивановой марии сергеевны", actual.String())

	assert.Equal(t, types.Female, ResolveGender(name, types.Androgynous))
	assert.Equal(t, types.Male, ResolveGender(name, types.Male))
	assert.Equal(t, types.Androgynous, ResolveGender(FullName{First: "Саша"}, types.Androgynous))
}

func TestFullNameSkipsMissingParts(t *testing.T) {
	engine := loadEngine(t)

	actual := engine.FullName(FullName{First: "Анна"}, types.Female, types.Instrumental)
	assert.Equal(t, FullName{First: "анной"}, actual)
	assert.Equal(t, "анной", actual.String())
}

func TestReloadable(t *testing.T) {
	first := loadEngine(t)
	second := loadEngine(t)

	r := NewReloadable(first)
	assert.Same(t, first, r.Get())
	assert.Same(t, first, r.Swap(second))
	assert.Same(t, second, r.Get())
}
