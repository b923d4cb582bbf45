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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/api/types/metrics"
	"github.com/rulego/rulego-transform/components/generate"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate <source-file>",
	Short: "Run a generate source and print the produced records",
	Long: "Run a generate source against the output schema given with --schema. " +
		"Every produced record is printed as one JSON line with its output port.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("schema", "s", "", "Output fields, e.g. \"id:long,name:string\"")
	generateCmd.Flags().IntP("records", "n", 1, "Number of generate calls")
	generateCmd.Flags().String("error-actions", engine.DefaultErrorActions, "Error actions applied to user error codes")
	generateCmd.Flags().Bool("metrics", false, "Print the call counters after the run")
	_ = generateCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(generateCmd)
}

// node names the generator after its source file.
type node string

func (n node) Id() string {
	return string(n)
}

// metered is implemented by every transform built on base.BaseTransform.
type metered interface {
	Metrics() *metrics.TransformMetrics
}

func runGenerate(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}
	schemaFlag, _ := cmd.Flags().GetString("schema")
	records, _ := cmd.Flags().GetInt("records")
	errorActions, _ := cmd.Flags().GetString("error-actions")
	printMetrics, _ := cmd.Flags().GetBool("metrics")

	schema, err := parseSchema(filepath.Base(args[0]), schemaFlag)
	if err != nil {
		return err
	}
	config := newConfig(viper.GetDuration("timeout"), viper.GetStringMapString("properties"))
	id := node(filepath.Base(args[0]))
	generator, err := generate.NewDataGenerator(config, id, types.Configuration{
		"generate":      string(source),
		"recordsNumber": records,
		"errorActions":  errorActions,
	}, []*types.RecordSchema{schema})
	if err != nil {
		return err
	}
	defer generator.Free()

	out := cmd.OutOrStdout()
	runErr := generator.Run(context.Background(), func(port int, record *types.Record) error {
		line, err := json.Marshal(map[string]interface{}{"port": port, "record": record.Values()})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(line))
		return err
	})
	if printMetrics {
		if m, ok := generator.Generate().(metered); ok {
			collector := metrics.NewCollector()
			collector.Register(string(id), types.KindGenerate.String(), m.Metrics())
			if err := writeMetrics(out, collector); err != nil {
				return err
			}
		}
	}
	return runErr
}

// parseSchema parses "name:type" pairs separated by commas. The type defaults to string.
func parseSchema(name string, s string) (*types.RecordSchema, error) {
	var fields []types.FieldMeta
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fieldName, typeName, found := strings.Cut(item, ":")
		dataType := types.STRING
		if found {
			dataType = types.DataType(strings.ToLower(strings.TrimSpace(typeName)))
		}
		switch dataType {
		case types.STRING, types.INTEGER, types.LONG, types.NUMBER, types.BOOLEAN, types.DATE, types.BYTE:
		default:
			return nil, fmt.Errorf("field %s: unknown type %q", fieldName, typeName)
		}
		fields = append(fields, types.NewField(strings.TrimSpace(fieldName), dataType))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}
	return types.NewRecordSchema(name, fields...)
}

// writeMetrics prints the gathered counters in the Prometheus text exposition format.
func writeMetrics(w io.Writer, collector prometheus.Collector) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return err
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
