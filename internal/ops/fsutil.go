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

package ops

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

func filepathReadlink(path string) (string, error) {
	return os.Readlink(path)
}

func removeFile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(err, "removing %s", path)
	}
	return nil
}

func symlink(target, path string) error {
	if err := os.Symlink(target, path); err != nil {
		return errors.Wrapf(err, "linking %s to %s", path, target)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func chmodExecutable(path string) error {
	return os.Chmod(path, 0755)
}

// execBinary runs path with argv as its arguments, wired to the
// caller's stdio.
func execBinary(ctx context.Context, path string, argv []string) error {
	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %s", path)
	}
	return nil
}
