// Copyright © 2018 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prompt abstracts the "choose one of N" and "keep or
// delete?" interactive decisions the engine needs, so non-interactive
// runs swap in a first-wins implementation instead of branching on a
// yes flag at every call site.
package prompt

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Selector picks one index out of a list of labeled options, or
// decides a yes/no question. Two implementations are provided:
// Interactive (stdin, via survey) and FirstWins (non-interactive,
// always picks the first option / answers yes).
type Selector interface {
	// Choose prompts the user to pick one of options (len(options) >
	// 1 is assumed by callers) and returns its index.
	Choose(prompt string, options []string) (int, error)
	// Confirm asks a yes/no question with def as the preselected
	// answer. Interactive returns ErrNoTerminal when it cannot prompt;
	// FirstWins answers yes whatever def is.
	Confirm(prompt string, def bool) (bool, error)
}

// FirstWins always resolves to the first option / the "yes" answer,
// used when --yes is passed. It is not substituted automatically when
// no terminal is attached.
type FirstWins struct{}

// Choose always returns 0.
func (FirstWins) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}
	return 0, nil
}

// Confirm always returns true, regardless of def.
func (FirstWins) Confirm(prompt string, def bool) (bool, error) {
	return true, nil
}

// Interactive prompts on stdin using survey's select/confirm widgets.
// When stdin is not a terminal it returns ErrNoTerminal rather than
// letting survey fail mid-prompt.
type Interactive struct{}

// Choose renders a 1-based select prompt.
func (Interactive) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}
	if !stdinIsTerminal() {
		return 0, errors.Wrapf(ErrNoTerminal, "%s", prompt)
	}
	var choice string
	q := &survey.Select{
		Message: prompt,
		Options: options,
	}
	if err := survey.AskOne(q, &choice); err != nil {
		return 0, errors.Wrap(err, "reading interactive selection")
	}
	for i, o := range options {
		if o == choice {
			return i, nil
		}
	}
	return 0, errors.New("selection did not match any option")
}

// Confirm renders a yes/no prompt.
func (Interactive) Confirm(prompt string, def bool) (bool, error) {
	if !stdinIsTerminal() {
		return false, errors.Wrapf(ErrNoTerminal, "%s", prompt)
	}
	answer := def
	q := &survey.Confirm{
		Message: prompt,
		Default: def,
	}
	if err := survey.AskOne(q, &answer); err != nil {
		return false, errors.Wrap(err, "reading interactive confirmation")
	}
	return answer, nil
}

// ErrNoTerminal is returned by an interactive Selector when no
// controlling terminal is available to prompt on.
var ErrNoTerminal = errors.New("ambiguous query but no interactive terminal is available")

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
