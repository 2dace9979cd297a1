package options

import (
	"strconv"
)

type OptionStruct struct {
	Key   string
	Value string
}

type Option func(*OptionStruct)

func Limit(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "limit"
		f.Value = strconv.Itoa(value)
	}
}

func Offset(value int) Option {
	return func(f *OptionStruct) {
		f.Key = "offset"
		f.Value = strconv.Itoa(value)
	}
}

func Expand(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "expand"
		f.Value = value
	}
}

func Filter(value string) Option {
	return func(f *OptionStruct) {
		f.Key = "filter"
		f.Value = value
	}
}
