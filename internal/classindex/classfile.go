package classindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const classMagic = 0xCAFEBABE

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var errTruncated = errors.New("unexpected end of class file")

// ClassFile is the part of a class file the index needs: the class's own
// name, its supertypes and every class named in the constant pool.
type ClassFile struct {
	Name       string
	Super      string
	Interfaces []string
	Refs       []string
}

// ParseClass decodes the header and constant pool of a class file. Class
// names are returned in dotted form. Refs excludes the class itself and
// primitive array types, and is sorted.
func ParseClass(data []byte) (*ClassFile, error) {
	r := &reader{buf: data}
	if r.u4() != classMagic {
		if r.err != nil {
			return nil, r.err
		}
		return nil, errors.New("bad magic number")
	}
	r.u2() // minor
	r.u2() // major

	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}
	utf8 := make(map[int]string)
	classes := make(map[int]int)
	for i := 1; i < count; i++ {
		tag := r.u1()
		switch tag {
		case tagUtf8:
			n := int(r.u2())
			utf8[i] = string(r.bytes(n))
		case tagClass:
			classes[i] = int(r.u2())
		case tagString, tagMethodType, tagModule, tagPackage:
			r.skip(2)
		case tagMethodHandle:
			r.skip(3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			i++
		default:
			if r.err != nil {
				return nil, r.err
			}
			return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
		}
		if r.err != nil {
			return nil, r.err
		}
	}

	className := func(idx int) (string, error) {
		nameIdx, ok := classes[idx]
		if !ok {
			return "", fmt.Errorf("constant pool index %d is not a class", idx)
		}
		name, ok := utf8[nameIdx]
		if !ok {
			return "", fmt.Errorf("constant pool index %d is not a utf8 entry", nameIdx)
		}
		return name, nil
	}

	r.u2() // access flags
	thisIdx := int(r.u2())
	superIdx := int(r.u2())
	nIfaces := int(r.u2())
	ifaceIdx := make([]int, 0, nIfaces)
	for range nIfaces {
		ifaceIdx = append(ifaceIdx, int(r.u2()))
	}
	if r.err != nil {
		return nil, r.err
	}

	this, err := className(thisIdx)
	if err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	cf := &ClassFile{Name: dotted(this)}
	if superIdx != 0 {
		super, err := className(superIdx)
		if err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
		cf.Super = dotted(super)
	}
	for _, idx := range ifaceIdx {
		name, err := className(idx)
		if err != nil {
			return nil, fmt.Errorf("interfaces: %w", err)
		}
		cf.Interfaces = append(cf.Interfaces, dotted(name))
	}

	seen := make(map[string]bool)
	for idx := range classes {
		if idx == thisIdx {
			continue
		}
		raw, err := className(idx)
		if err != nil {
			return nil, err
		}
		ref, ok := elementClass(raw)
		if !ok || ref == cf.Name || seen[ref] {
			continue
		}
		seen[ref] = true
		cf.Refs = append(cf.Refs, ref)
	}
	slices.Sort(cf.Refs)
	return cf, nil
}

// PackageOf returns the package of a dotted class name, "" for the default package.
func PackageOf(className string) string {
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		return className[:i]
	}
	return ""
}

func dotted(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// elementClass unwraps array descriptors such as "[[Ljava/lang/String;".
// Arrays of primitives have no class and report false.
func elementClass(name string) (string, bool) {
	if !strings.HasPrefix(name, "[") {
		return dotted(name), true
	}
	elem := strings.TrimLeft(name, "[")
	if strings.HasPrefix(elem, "L") && strings.HasSuffix(elem, ";") {
		return dotted(elem[1 : len(elem)-1]), true
	}
	return "", false
}

type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = errTruncated
		return false
	}
	return true
}

func (r *reader) u1() byte {
	if !r.need(1) {
		return 0
	}
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}
