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

// Package cast converts loosely typed values, as produced by script runtimes,
// into the Go representations of record field types.
package cast

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rulego/rulego-transform/utils/json"
)

// ToInt32E converts an interface{} to int32, failing on overflow.
func ToInt32E(value interface{}) (int32, error) {
	v, err := ToInt64E(value)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d overflows int32", v)
	}
	return int32(v), nil
}

// ToInt64E converts an interface{} to int64 with error handling.
// Returns the converted int64 value and nil error if successful.
// Returns 0 and an error if conversion fails or a float is not integral.
func ToInt64E(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, nil
		} else {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unable to cast %v of type %T to int64", value, value)
	}
}

func floatToInt64(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, fmt.Errorf("unable to cast %v to an integer without losing precision", v)
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, fmt.Errorf("value %v overflows int64", v)
	}
	return int64(v), nil
}

// ToBoolE converts an interface{} to bool with error handling.
// Returns the converted bool value and nil error if successful.
// Returns false and an error if conversion fails.
func ToBoolE(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v != 0, nil
	case float32:
		return v != 0.0, nil
	case float64:
		return v != 0.0, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
		return false, fmt.Errorf("unable to cast %v of type %T to bool", value, value)
	default:
		return false, fmt.Errorf("unable to cast %v of type %T to bool", value, value)
	}
}

// ToFloat64E converts an interface{} to float64 with error handling.
// Returns the converted float64 value and nil error if successful.
// Returns 0 and an error if conversion fails.
func ToFloat64E(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		} else {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unable to cast %v of type %T to float64", value, value)
	}
}

// ToStringE converts an interface{} to string with error handling.
// Returns the converted string value and nil error if successful.
// Returns empty string and an error if conversion fails.
func ToStringE(input interface{}) (string, error) {
	if input == nil {
		return "", nil
	}
	switch v := input.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.Itoa(int(v)), nil
	case int16:
		return strconv.Itoa(int(v)), nil
	case int32:
		return strconv.Itoa(int(v)), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	default:
		if newValue, err := json.Marshal(input); err == nil {
			return string(newValue), nil
		} else {
			return "", err
		}
	}
}

// ToTimeE converts an interface{} to time.Time.
// Integers are read as milliseconds since the epoch, strings as RFC 3339.
func ToTimeE(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case int, int32, int64, uint32, uint64, float64:
		ms, err := ToInt64E(v)
		if err != nil {
			return time.Time{}, err
		}
		return ConvertIntToTime(ms, time.Millisecond), nil
	default:
		return time.Time{}, fmt.Errorf("unable to cast %v of type %T to time", value, value)
	}
}

// ToBytesE converts strings and byte slices to []byte.
func ToBytesE(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		b := make([]byte, len(v))
		copy(b, v)
		return b, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unable to cast %v of type %T to bytes", value, value)
	}
}

// ConvertIntToTime converts an integer timestamp in timeUnit to time.Time.
func ConvertIntToTime(timestampInt int64, timeUnit time.Duration) time.Time {
	switch timeUnit {
	case time.Second:
		return time.Unix(timestampInt, 0)
	case time.Millisecond:
		return time.Unix(0, timestampInt*int64(time.Millisecond))
	case time.Microsecond:
		return time.Unix(0, timestampInt*int64(time.Microsecond))
	case time.Nanosecond:
		return time.Unix(0, timestampInt)
	default:
		return time.Unix(timestampInt, 0)
	}
}
