package formats

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/colkit/pkg/columnar"
	"github.com/ajitpratap0/colkit/pkg/errors"
	"github.com/ajitpratap0/colkit/pkg/json"
)

type avroField struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

type avroSchema struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

func avroCompression(name string) (string, error) {
	switch name {
	case "", "none":
		return goavro.CompressionNullLabel, nil
	case "gzip", "deflate":
		return goavro.CompressionDeflateLabel, nil
	case "snappy":
		return goavro.CompressionSnappyLabel, nil
	}
	return "", unsupportedCompression(Avro, name)
}

func avroTypeOf(dt arrow.DataType) (any, error) {
	switch dt.ID() {
	case arrow.INT64:
		return "long", nil
	case arrow.FLOAT64:
		return "double", nil
	case arrow.BOOL:
		return "boolean", nil
	case arrow.STRING:
		return []string{"null", "string"}, nil
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "no Avro type for %s", dt)
}

func writeAvro(w io.Writer, arr arrow.Array, config *WriterConfig) error {
	compression, err := avroCompression(config.Compression)
	if err != nil {
		return err
	}
	typ, err := avroTypeOf(arr.DataType())
	if err != nil {
		return err
	}
	schema, err := json.Marshal(avroSchema{
		Type:   "record",
		Name:   "Row",
		Fields: []avroField{{Name: config.Field, Type: typ}},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build Avro schema")
	}
	codec, err := goavro.NewCodec(string(schema))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to create Avro codec").WithDetail("field", config.Field)
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{W: w, Codec: codec, CompressionName: compression})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Avro writer")
	}

	batch := make([]any, 0, min(config.BatchSize, arr.Len()))
	for i := 0; i < arr.Len(); i++ {
		batch = append(batch, map[string]any{config.Field: avroValue(arr, i)})
		if len(batch) == config.BatchSize || i == arr.Len()-1 {
			if err := ocf.Append(batch); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Avro block").WithDetail("row", i)
			}
			batch = batch[:0]
		}
	}
	return nil
}

func avroValue(arr arrow.Array, i int) any {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		if a.IsNull(i) {
			return goavro.Union("null", nil)
		}
		return goavro.Union("string", a.Value(i))
	}
	return nil
}

// readAvro decodes one field of an object container file. long and int
// fields become int64 columns, double and float fields float64, boolean
// fields bool and string fields (optionally nullable) series.
func readAvro(data []byte, field string) (columnar.Backend, error) {
	ocf, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create Avro reader")
	}

	var schema avroSchema
	if err := json.Unmarshal([]byte(ocf.Codec().Schema()), &schema); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedDataType, "Avro schema is not a record")
	}
	if schema.Type != "record" || len(schema.Fields) == 0 {
		return nil, errors.New(errors.ErrorTypeUnsupportedDataType, "Avro schema is not a record with fields")
	}
	f := schema.Fields[0]
	if field != "" {
		found := false
		for _, sf := range schema.Fields {
			if sf.Name == field {
				f, found = sf, true
				break
			}
		}
		if !found {
			return nil, errors.Newf(errors.ErrorTypeInvalidIndex, "no field named %q", field).WithDetail("field", field)
		}
	}
	base, nullable, err := avroBaseType(f.Type)
	if err != nil {
		return nil, err
	}

	var values []any
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Avro row").WithDetail("row", len(values))
		}
		rec, ok := datum.(map[string]any)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "Avro row is %T", datum)
		}
		v := rec[f.Name]
		if u, ok := v.(map[string]any); ok {
			for _, inner := range u {
				v = inner
			}
		}
		values = append(values, v)
	}
	if err := ocf.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Avro file")
	}
	return avroBackend(base, nullable, values)
}

func avroBaseType(t any) (string, bool, error) {
	switch x := t.(type) {
	case string:
		return x, false, nil
	case []any:
		base, nullable := "", false
		for _, member := range x {
			name, _ := member.(string)
			switch {
			case name == "null":
				nullable = true
			case base == "" && name != "":
				base = name
			default:
				return "", false, errors.Newf(errors.ErrorTypeUnsupportedDataType, "unsupported Avro union %v", x)
			}
		}
		return base, nullable, nil
	}
	return "", false, errors.Newf(errors.ErrorTypeUnsupportedDataType, "unsupported Avro type %v", t)
}

func avroBackend(base string, nullable bool, values []any) (columnar.Backend, error) {
	if base == "string" {
		return columnar.NewSeries("", values), nil
	}
	if nullable {
		for i, v := range values {
			if v == nil {
				return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "Avro %s field has a null at row %d", base, i).
					WithDetail("row", i)
			}
		}
	}
	switch base {
	case "long", "int":
		out := make([]int64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case int64:
				out[i] = n
			case int32:
				out[i] = int64(n)
			}
		}
		return columnar.NewNumeric(out), nil
	case "double", "float":
		out := make([]float64, len(values))
		for i, v := range values {
			switch n := v.(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			}
		}
		return columnar.NewNumeric(out), nil
	case "boolean":
		out := make([]bool, len(values))
		for i, v := range values {
			out[i], _ = v.(bool)
		}
		return columnar.NewNumeric(out), nil
	}
	return nil, errors.Newf(errors.ErrorTypeUnsupportedDataType, "unsupported Avro type %q", base)
}
