package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/availability"
)

const sampleSeed = `
rooms:
  - number: "101"
    floor: 1
  - number: "102"
    is_active: false
categories:
  - name: Breakfast
    window: {start: "07:00", end: "10:30"}
    items:
      - name: Pancakes
        price: "9.00"
      - name: Late Omelette
        price: 11.5
        window: {start: "07:00", end: "11:00:30"}
  - name: All Day
    items:
      - name: Club Sandwich
        price: "12.50"
`

func TestParseCatalogSeed(t *testing.T) {
	seed, err := ParseCatalogSeed([]byte(sampleSeed))
	require.NoError(t, err)

	require.Len(t, seed.Rooms, 2)
	require.NotNil(t, seed.Rooms[0].Floor)
	assert.Equal(t, 1, *seed.Rooms[0].Floor)
	assert.True(t, Active(seed.Rooms[0].IsActive))
	assert.False(t, Active(seed.Rooms[1].IsActive))

	require.Len(t, seed.Categories, 2)
	bf := seed.Categories[0]
	require.NotNil(t, bf.Window)
	assert.Equal(t, availability.Clock(7, 0, 0), bf.Window.Start)
	assert.Equal(t, availability.Clock(10, 30, 0), bf.Window.End)
	assert.Equal(t, "9.00", bf.Items[0].Price.StringFixed(2))
	assert.Equal(t, "11.50", bf.Items[1].Price.StringFixed(2))
	assert.Equal(t, availability.Clock(11, 0, 30), bf.Items[1].Window.End)
	assert.Nil(t, seed.Categories[1].Window)
}

func TestParseCatalogSeedRejects(t *testing.T) {
	cases := map[string]string{
		"wrapping window": `
categories:
  - name: Night
    window: {start: "22:00", end: "02:00"}
`,
		"bad clock": `
categories:
  - name: Night
    items:
      - name: Soup
        price: 1
        window: {start: "25:00", end: "26:00"}
`,
		"negative price": `
categories:
  - name: Bar
    items:
      - name: Refund
        price: "-1.00"
`,
		"duplicate room": `
rooms:
  - number: "101"
  - number: "101"
`,
		"duplicate item": `
categories:
  - name: Bar
    items:
      - {name: Beer, price: 4}
      - {name: Beer, price: 5}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalogSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}
