package plist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"time"
	"unicode/utf16"

	"howett.net/plistentry/cf"
)

type bplistTrailer struct {
	Unused            [5]uint8
	SortVersion       uint8
	OffsetIntSize     uint8
	ObjectRefSize     uint8
	NumObjects        uint64
	TopObject         uint64
	OffsetTableOffset uint64
}

const (
	bpTagNull        uint8 = 0x00
	bpTagBoolFalse   uint8 = 0x08
	bpTagBoolTrue    uint8 = 0x09
	bpTagInteger     uint8 = 0x10
	bpTagReal        uint8 = 0x20
	bpTagDate        uint8 = 0x30
	bpTagData        uint8 = 0x40
	bpTagASCIIString uint8 = 0x50
	bpTagUTF16String uint8 = 0x60
	bpTagUID         uint8 = 0x80
	bpTagArray       uint8 = 0xA0
	bpTagDictionary  uint8 = 0xD0
)

const (
	bplistHeaderSize  = 8
	bplistTrailerSize = 32

	// seconds between the UNIX epoch and 2001-01-01T00:00:00Z
	appleEpochOffset = 978307200

	signedHighBits = 0xFFFFFFFFFFFFFFFF
)

type bplistParser struct {
	reader        io.ReadSeeker
	buffer        []byte
	version       int
	objects       []cf.Value
	offtable      []uint64
	trailer       bplistTrailer
	trailerOffset uint64

	containerStack []uint64 // object indices of the containers being decoded
}

func (p *bplistParser) validateDocumentTrailer() {
	t := &p.trailer

	if t.OffsetIntSize < 1 || t.OffsetIntSize > 8 {
		panic(fmt.Errorf("binary property list offset size %d is out of range", t.OffsetIntSize))
	}

	if t.ObjectRefSize < 1 || t.ObjectRefSize > 8 {
		panic(fmt.Errorf("binary property list object ref size %d is out of range", t.ObjectRefSize))
	}

	if t.OffsetTableOffset >= p.trailerOffset {
		panic(fmt.Errorf("binary property list offset table beyond beginning of trailer (0x%x, trailer@0x%x)", t.OffsetTableOffset, p.trailerOffset))
	}

	if t.OffsetTableOffset < bplistHeaderSize+1 {
		panic(fmt.Errorf("binary property list offset table begins inside header (0x%x)", t.OffsetTableOffset))
	}

	if t.NumObjects > p.trailerOffset {
		panic(fmt.Errorf("binary property list contains more objects (%v) than there are non-trailer bytes in the file (%v)", t.NumObjects, p.trailerOffset))
	}

	if tableEnd := t.OffsetTableOffset + t.NumObjects*uint64(t.OffsetIntSize); tableEnd > p.trailerOffset {
		panic(fmt.Errorf("binary property list offset table (ending at 0x%x) overlaps trailer@0x%x", tableEnd, p.trailerOffset))
	} else if tableEnd < p.trailerOffset {
		panic(errors.New("binary property list contains garbage between offset table and trailer"))
	}

	if t.ObjectRefSize < 8 && t.NumObjects > uint64(1)<<(8*t.ObjectRefSize) {
		panic(fmt.Errorf("binary property list contains more objects (%v) than its object ref size (%v bytes) can support", t.NumObjects, t.ObjectRefSize))
	}

	if t.OffsetIntSize < 8 && (uint64(1)<<(8*t.OffsetIntSize)) <= t.OffsetTableOffset {
		panic(errors.New("binary property offset size isn't big enough to address entire file"))
	}

	if t.TopObject >= t.NumObjects {
		panic(fmt.Errorf("top object index %v is out of range (only %v objects exist)", t.TopObject, t.NumObjects))
	}
}

func (p *bplistParser) parseDocument() (pval cf.Value, parseError error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			if e, ok := r.(InvalidDocumentError); ok {
				parseError = e
			} else {
				parseError = ParseError{"binary", r.(error)}
			}
		}
	}()

	if _, err := p.reader.Seek(0, io.SeekStart); err != nil {
		panic(err)
	}
	buffer, err := io.ReadAll(p.reader)
	if err != nil {
		panic(err)
	}
	p.buffer = buffer

	if len(p.buffer) < bplistHeaderSize || !bytes.Equal(p.buffer[:6], []byte("bplist")) {
		panic(InvalidDocumentError{"binary", errors.New("mismatched magic")})
	}

	switch ver := string(p.buffer[6:8]); ver {
	case "00", "01":
		p.version = int(mustParseInt(ver, 10, 0))
	default:
		panic(fmt.Errorf("unexpected version %q", ver))
	}

	if len(p.buffer) < bplistHeaderSize+bplistTrailerSize {
		panic(errors.New("binary property list is too short to hold a trailer"))
	}

	p.trailerOffset = uint64(len(p.buffer) - bplistTrailerSize)
	err = binary.Read(bytes.NewReader(p.buffer[p.trailerOffset:]), binary.BigEndian, &p.trailer)
	if err != nil {
		panic(err)
	}

	p.validateDocumentTrailer()

	size := uint64(p.trailer.OffsetIntSize)
	maxOffset := p.trailer.OffsetTableOffset - 1
	p.offtable = make([]uint64, p.trailer.NumObjects)
	for i := range p.offtable {
		at := p.trailer.OffsetTableOffset + uint64(i)*size
		off, _ := sizedInt(p.buffer[at : at+size])
		if off > maxOffset {
			panic(fmt.Errorf("object %v starts beyond beginning of object table (0x%x, table@0x%x)", i, off, maxOffset+1))
		}
		if off < bplistHeaderSize {
			panic(fmt.Errorf("object %v starts inside header (0x%x)", i, off))
		}
		p.offtable[i] = off
	}

	p.objects = make([]cf.Value, p.trailer.NumObjects)
	pval = p.objectAtIndex(p.trailer.TopObject)
	return
}

// sizedInt decodes a big-endian integer of up to 16 bytes as low64, high64.
func sizedInt(b []byte) (uint64, uint64) {
	var lo, hi uint64
	for i, c := range b {
		if len(b)-i > 8 {
			hi = hi<<8 | uint64(c)
		} else {
			lo = lo<<8 | uint64(c)
		}
	}
	return lo, hi
}

// objectBytes returns n bytes at off; they must end before the offset table.
func (p *bplistParser) objectBytes(off, n uint64) []byte {
	limit := p.trailer.OffsetTableOffset
	if n > limit || off > limit-n {
		panic(fmt.Errorf("object data at 0x%x (%v bytes) runs past the object table at 0x%x", off, n, limit))
	}
	return p.buffer[off : off+n]
}

// countForTag returns the element count of the object at off, and the
// offset its payload starts at.
func (p *bplistParser) countForTag(off uint64, tag uint8) (uint64, uint64) {
	cnt := uint64(tag & 0x0F)
	off++
	if cnt != 0xF {
		return cnt, off
	}

	intTag := p.objectBytes(off, 1)[0]
	if intTag&0xF0 != bpTagInteger || intTag&0x0F > 3 {
		panic(fmt.Errorf("invalid count marker 0x%2.02x at offset %d", intTag, off))
	}
	n := uint64(1) << (intTag & 0x0F)
	cnt, _ = sizedInt(p.objectBytes(off+1, n))
	return cnt, off + 1 + n
}

func (p *bplistParser) objectAtIndex(index uint64) cf.Value {
	if index >= p.trailer.NumObjects {
		panic(fmt.Errorf("object index %d is out of range (max %d)", index, p.trailer.NumObjects))
	}

	if pval := p.objects[index]; pval != nil {
		return pval
	}

	for _, i := range p.containerStack {
		if i == index {
			panic(fmt.Errorf("object %d is a container that contains itself", index))
		}
	}

	pval := p.parseTagAtOffset(index, p.offtable[index])
	p.objects[index] = pval
	return pval
}

func (p *bplistParser) readRefs(off, cnt uint64, context string) []uint64 {
	size := uint64(p.trailer.ObjectRefSize)
	if cnt > p.trailer.OffsetTableOffset/size {
		panic(fmt.Errorf("%s length (%v) puts its end beyond the offset table at 0x%x", context, cnt, p.trailer.OffsetTableOffset))
	}
	raw := p.objectBytes(off, cnt*size)

	refs := make([]uint64, cnt)
	for i := range refs {
		refs[i], _ = sizedInt(raw[uint64(i)*size : uint64(i+1)*size])
		if refs[i] >= p.trailer.NumObjects {
			panic(fmt.Errorf("%s contains invalid entry index %d (max %d)", context, refs[i], p.trailer.NumObjects))
		}
	}
	return refs
}

func (p *bplistParser) parseTagAtOffset(index, off uint64) cf.Value {
	tag := p.objectBytes(off, 1)[0]

	switch tag & 0xF0 {
	case bpTagNull:
		switch tag {
		case bpTagBoolTrue, bpTagBoolFalse:
			return cf.Boolean(tag == bpTagBoolTrue)
		}
		panic(fmt.Errorf("unsupported null or fill object 0x%2.02x at offset %d", tag, off))
	case bpTagInteger:
		if tag&0x0F > 4 {
			panic(errors.New("illegal integer size"))
		}
		nbytes := uint64(1) << (tag & 0x0F)
		lo, hi := sizedInt(p.objectBytes(off+1, nbytes))
		signed := false
		switch nbytes {
		case 8:
			// eight-byte integers are stored signed
			signed = int64(lo) < 0
		case 16:
			// a signed integer is stored as a 128-bit integer with the top 64 bits set
			signed = hi == signedHighBits
		}
		return &cf.Number{Signed: signed, Value: lo}
	case bpTagReal:
		switch nbytes := uint64(1) << (tag & 0x0F); nbytes {
		case 4:
			bits := binary.BigEndian.Uint32(p.objectBytes(off+1, 4))
			return &cf.Real{Wide: false, Value: float64(math.Float32frombits(bits))}
		case 8:
			bits := binary.BigEndian.Uint64(p.objectBytes(off+1, 8))
			return &cf.Real{Wide: true, Value: math.Float64frombits(bits)}
		}
		panic(errors.New("illegal float size"))
	case bpTagDate:
		if tag != bpTagDate|0x3 {
			panic(fmt.Errorf("illegal date marker 0x%2.02x", tag))
		}
		val := math.Float64frombits(binary.BigEndian.Uint64(p.objectBytes(off+1, 8)))
		val += appleEpochOffset

		sec, fsec := math.Modf(val)
		t := time.Unix(int64(sec), int64(fsec*float64(time.Second))).In(time.UTC)
		return cf.Date(t)
	case bpTagData:
		cnt, start := p.countForTag(off, tag)
		data := make([]byte, cnt)
		copy(data, p.objectBytes(start, cnt))
		return cf.Data(data)
	case bpTagASCIIString:
		cnt, start := p.countForTag(off, tag)
		return cf.String(p.objectBytes(start, cnt))
	case bpTagUTF16String:
		cnt, start := p.countForTag(off, tag)
		if cnt > p.trailer.OffsetTableOffset/2 {
			panic(fmt.Errorf("string at 0x%x longer than file (%v characters)", off, cnt))
		}
		raw := p.objectBytes(start, cnt*2)
		units := make([]uint16, cnt)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(raw[i*2:])
		}
		return cf.String(utf16.Decode(units))
	case bpTagUID: // the low nibble is nbytes - 1 instead of log2(nbytes)
		val, _ := sizedInt(p.objectBytes(off+1, uint64(tag&0x0F)+1))
		return cf.UID(val)
	case bpTagArray:
		cnt, start := p.countForTag(off, tag)
		refs := p.readRefs(start, cnt, "array")

		p.containerStack = append(p.containerStack, index)
		values := make([]cf.Value, cnt)
		for i, ref := range refs {
			values[i] = p.objectAtIndex(ref)
		}
		p.containerStack = p.containerStack[:len(p.containerStack)-1]
		return &cf.Array{Values: values}
	case bpTagDictionary:
		cnt, start := p.countForTag(off, tag)
		if cnt > math.MaxUint64/2 {
			panic(fmt.Errorf("dictionary length (%v) is out of range", cnt))
		}
		refs := p.readRefs(start, cnt*2, "dictionary")

		p.containerStack = append(p.containerStack, index)
		dict := cf.NewDictionary(int(cnt))
		for i := uint64(0); i < cnt; i++ {
			key, ok := p.objectAtIndex(refs[i]).(cf.String)
			if !ok {
				panic(fmt.Errorf("dictionary contains non-string key at index %d", i))
			}
			dict.Set(string(key), p.objectAtIndex(refs[i+cnt]))
		}
		p.containerStack = p.containerStack[:len(p.containerStack)-1]
		return dict
	}
	panic(fmt.Errorf("unexpected atom 0x%2.02x at offset 0x%x", tag, off))
}

func newBplistParser(r io.ReadSeeker) *bplistParser {
	return &bplistParser{reader: r}
}
