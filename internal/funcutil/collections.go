// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package funcutil contains generic helpers over slices and maps.
package funcutil

import (
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Map returns a new slice b such for any i <= len(a), b[i] = f(a[i])
func Map[T any, S any](a []T, f func(T) S) []S {
	b := make([]S, 0, len(a))
	for _, x := range a {
		b = append(b, f(x))
	}
	return b
}

// Filter returns the elements x of a such that f(x), in order
func Filter[T any](a []T, f func(T) bool) []T {
	var b []T
	for _, x := range a {
		if f(x) {
			b = append(b, x)
		}
	}
	return b
}

// Exists returns true when there exists some x in slice a such that f(x), otherwise false.
func Exists[T any](a []T, f func(T) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}

// Contains returns true when there is some y in slice a such that x == y
func Contains[T comparable](a []T, x T) bool {
	return slices.Contains(a, x)
}

// SetToOrderedSlice converts a set represented as a map from elements to booleans into a slice.
// Sorts the result in increasing order
func SetToOrderedSlice[T constraints.Ordered](set map[T]bool) []T {
	s := make([]T, 0, len(set))
	for _, x := range maps.Keys(set) {
		if set[x] {
			s = append(s, x)
		}
	}
	slices.Sort(s)
	return s
}

// MapParallel is a parallel version of Map using numRoutines goroutines. The order of the results matches the
// order of a.
func MapParallel[T any, S any](a []T, f func(T) S, numRoutines int) []S {
	if numRoutines <= 0 {
		numRoutines = 1
	}
	res := make([]S, len(a))
	in := make(chan int)
	go func() {
		defer close(in)
		for i := range a {
			in <- i
		}
	}()

	wg := &sync.WaitGroup{}
	wg.Add(numRoutines)
	for i := 0; i < numRoutines; i++ {
		go func() {
			defer wg.Done()
			// each index is written by exactly one goroutine
			for idx := range in {
				res[idx] = f(a[idx])
			}
		}()
	}
	wg.Wait()
	return res
}
