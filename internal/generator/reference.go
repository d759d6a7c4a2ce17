package generator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/piwi3910/packbench/internal/model"
)

// Reference file names as published with the instance sets.
const (
	BerkeyWangFile   = "BerkeyWangReferenceInstances.txt"
	MartelloVigoFile = "MartelloVigoReferenceInstances.txt"
	ClautiauxFile    = "ClautiauxReferenceInstances.txt"
)

// tokens reads whitespace-separated fields.
type tokens struct {
	sc   *bufio.Scanner
	read int
}

func newTokens(r io.Reader) *tokens {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc}
}

func (t *tokens) next() (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	t.read++
	return t.sc.Text(), nil
}

func (t *tokens) int() (int, error) {
	s, err := t.next()
	if err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("token %d: %w", t.read+1, io.ErrUnexpectedEOF)
		}
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("token %d: invalid integer %q", t.read, s)
	}
	return v, nil
}

// items reads a count followed by that many width/height pairs.
func (t *tokens) items() ([]model.Item, error) {
	n, err := t.int()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("token %d: negative item count %d", t.read, n)
	}
	items := make([]model.Item, n)
	for i := range items {
		if items[i].Width, err = t.int(); err != nil {
			return nil, err
		}
		if items[i].Height, err = t.int(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// ReadClassified reads classes*perClass square-bin instances laid out as
// "W n w1 h1 ... wn hn", class by class. Instance k of class c is named
// "<prefix>Class <c>.<kk>".
func ReadClassified(r io.Reader, prefix string, classes, perClass int) (map[Class][]*model.BinInstance, error) {
	t := newTokens(r)
	out := make(map[Class][]*model.BinInstance, classes)
	for c := 1; c <= classes; c++ {
		list := make([]*model.BinInstance, 0, perClass)
		for k := 1; k <= perClass; k++ {
			width, err := t.int()
			if err != nil {
				return nil, fmt.Errorf("class %d instance %d: %w", c, k, err)
			}
			items, err := t.items()
			if err != nil {
				return nil, fmt.Errorf("class %d instance %d: %w", c, k, err)
			}
			in, err := model.NewBinInstance(fmt.Sprintf("%sClass %d.%02d", prefix, c, k), width, width, items)
			if err != nil {
				return nil, err
			}
			list = append(list, in)
		}
		out[Class(c)] = list
	}
	return out, nil
}

// ReadBerkeyWang reads the six Berkey and Wang reference classes.
func ReadBerkeyWang(r io.Reader) (map[Class][]*model.BinInstance, error) {
	return ReadClassified(r, BerkeyWangPrefix, berkeyWangClasses, instancesPerClass)
}

// ReadMartelloVigo reads the four Martello and Vigo reference classes.
func ReadMartelloVigo(r io.Reader) (map[Class][]*model.BinInstance, error) {
	return ReadClassified(r, MartelloVigoPrefix, martelloVigoClasses, instancesPerClass)
}

// ReadClautiaux reads records of the form "id W H n w1 h1 ... wn hn" until
// the end of input.
func ReadClautiaux(r io.Reader) ([]*model.BinInstance, error) {
	t := newTokens(r)
	var out []*model.BinInstance
	for {
		id, err := t.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		width, err := t.int()
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", id, err)
		}
		height, err := t.int()
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", id, err)
		}
		items, err := t.items()
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", id, err)
		}
		in, err := model.NewBinInstance(ClautiauxPrefix+id, width, height, items)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
}

// LoadSuite reads the reference file of a family ("bw", "mv" or
// "clautiaux") from dir and returns its instances in file order.
func LoadSuite(dir, family string) ([]*model.BinInstance, error) {
	switch family {
	case "bw":
		return loadClassified(filepath.Join(dir, BerkeyWangFile), ReadBerkeyWang)
	case "mv":
		return loadClassified(filepath.Join(dir, MartelloVigoFile), ReadMartelloVigo)
	case "clautiaux":
		f, err := os.Open(filepath.Join(dir, ClautiauxFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open reference instances: %w", err)
		}
		defer f.Close()
		return ReadClautiaux(f)
	}
	return nil, fmt.Errorf("unknown instance family %q", family)
}

func loadClassified(path string, read func(io.Reader) (map[Class][]*model.BinInstance, error)) ([]*model.BinInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference instances: %w", err)
	}
	defer f.Close()

	byClass, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	var out []*model.BinInstance
	for c := Class(1); int(c) <= len(byClass); c++ {
		out = append(out, byClass[c]...)
	}
	return out, nil
}
