package layout

import (
	"go/types"
)

// Info is the platform layout of one struct.
type Info struct {
	Fields    []FieldInfo
	Size      int64
	Align     int64
	NoPadding int64
}

// Wasted is the number of padding bytes the platform layout inserts.
func (i Info) Wasted() int64 {
	return i.Size - i.NoPadding
}

// FieldInfo is the placement of one struct field.
type FieldInfo struct {
	Name      string
	Type      string
	Offset    int64
	Size      int64
	NoPadding int64
	Padding   int64 // gap between this field and the next one (or the struct end)
}

type Calculator struct {
	sizes types.Sizes
	cache map[*types.Struct]Info
}

func NewCalculator(sizes types.Sizes) *Calculator {
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}
	return &Calculator{
		sizes: sizes,
		cache: make(map[*types.Struct]Info),
	}
}

// Struct computes the layout of st. Type parameters must be instantiated.
func (c *Calculator) Struct(st *types.Struct) Info {
	if cached, ok := c.cache[st]; ok {
		return cached
	}

	n := st.NumFields()
	vars := make([]*types.Var, n)
	for i := range n {
		vars[i] = st.Field(i)
	}

	info := Info{
		Size:   c.sizes.Sizeof(st),
		Align:  c.sizes.Alignof(st),
		Fields: make([]FieldInfo, 0, n),
	}
	if n == 0 {
		c.cache[st] = info
		return info
	}

	offsets := c.sizes.Offsetsof(vars)
	for i, v := range vars {
		size := c.sizes.Sizeof(v.Type())
		end := info.Size
		if i+1 < n {
			end = offsets[i+1]
		}
		noPad := c.NoPadding(v.Type())
		info.Fields = append(info.Fields, FieldInfo{
			Name:      v.Name(),
			Type:      types.TypeString(v.Type(), nil),
			Offset:    offsets[i],
			Size:      size,
			NoPadding: noPad,
			Padding:   end - offsets[i] - size,
		})
		info.NoPadding += noPad
	}

	c.cache[st] = info
	return info
}

// NoPadding returns the padding-free size of t: structs and arrays recurse,
// everything else is its platform size.
func (c *Calculator) NoPadding(t types.Type) int64 {
	switch u := t.Underlying().(type) {
	case *types.Struct:
		return c.Struct(u).NoPadding
	case *types.Array:
		if u.Len() == 0 {
			return 0
		}
		return u.Len() * c.NoPadding(u.Elem())
	default:
		return c.sizes.Sizeof(t)
	}
}
