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
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/filter"
	"github.com/rulego/rulego-transform/components/generate"
	"github.com/rulego/rulego-transform/components/partition"
	"github.com/rulego/rulego-transform/components/transform"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/fs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errInvalid is returned when the checked source has configuration errors.
var errInvalid = errors.New("configuration is not valid")

var checkCmd = &cobra.Command{
	Use:   "check <source-file|pattern>...",
	Short: "Validate transform sources for a transform kind",
	Long: "Validate a transform source the way a node does before a run. " +
		"Modern sources are compiled, legacy sources are only detected.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("kind", "k", "transform", "Transform kind: filter, transform, generate or partition")
	checkCmd.Flags().StringP("language", "l", "", "Pin the source language instead of detecting it")
	checkCmd.Flags().String("error-actions", "", "Error actions to validate, e.g. \"-1=CONTINUE;MIN_INT=STOP\"")
	checkCmd.Flags().Duration("timeout", types.DefaultScriptMaxExecutionTime, "Maximum execution time of a script call")

	_ = viper.BindPFlag("timeout", checkCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths, err := fs.ResolvePaths(args)
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("kind")
	languageName, _ := cmd.Flags().GetString("language")
	errorActions, _ := cmd.Flags().GetString("error-actions")

	var pinned engine.Language
	if languageName != "" {
		var ok bool
		if pinned, ok = engine.ParseLanguage(languageName); !ok {
			return fmt.Errorf("unknown language %q", languageName)
		}
	}
	config := newConfig(viper.GetDuration("timeout"), viper.GetStringMapString("properties"))

	out := cmd.OutOrStdout()
	valid := true
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading source file: %w", err)
		}
		var status *engine.ConfigurationStatus
		var language engine.Language
		switch kind {
		case "filter":
			status, language = check(filter.Descriptor, config, string(source), pinned)
		case "transform":
			status, language = check(transform.Descriptor, config, string(source), pinned)
		case "generate":
			status, language = check(generate.Descriptor, config, string(source), pinned)
		case "partition":
			status, language = check(partition.Descriptor, config, string(source), pinned)
		default:
			return fmt.Errorf("unknown kind %q", kind)
		}
		if errorActions != "" {
			if err := engine.CheckErrorActions(errorActions); err != nil {
				status.AddError(err)
			}
		}

		if len(paths) > 1 {
			fmt.Fprintf(out, "%s:\n", path)
		}
		if viper.GetBool("verbose") {
			fmt.Fprintf(out, "kind: %s\nlanguage: %s\n", kind, language)
		}
		fmt.Fprint(out, status.String())
		if status.IsValid() {
			fmt.Fprintln(out, "OK")
		} else {
			valid = false
		}
	}
	if !valid {
		return errInvalid
	}
	return nil
}

// check returns the status of source and the language it was checked as.
func check[T types.Transform](descriptor *engine.TransformDescriptor[T], config types.Config,
	source string, language engine.Language) (*engine.ConfigurationStatus, engine.Language) {
	factory := engine.NewTransformFactory(descriptor)
	factory.SetConfig(config)
	factory.SetTransform(source)
	factory.SetLanguage(language)
	return factory.CheckConfig(), factory.Language()
}

func newConfig(timeout time.Duration, properties map[string]string) types.Config {
	return types.NewConfig(
		types.WithScriptMaxExecutionTime(timeout),
		types.WithProperties(properties),
	)
}
