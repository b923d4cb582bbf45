/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/fs"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <source-file|pattern>...",
	Short: "Print the language of transform sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	paths, err := fs.ResolvePaths(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading source file: %w", err)
		}
		if len(paths) > 1 {
			fmt.Fprintf(out, "%s: ", path)
		}
		language := engine.GuessLanguage(string(source))
		fmt.Fprintln(out, language)
		if language == engine.LanguageNative {
			if name, ok := engine.NativeClassName(string(source)); ok {
				fmt.Fprintf(out, "class: %s\n", name)
			}
		}
	}
	return nil
}
