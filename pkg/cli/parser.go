package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"gopkg.in/yaml.v3"
)

// EventFile representa um evento de ciclo de vida em YAML ou JSON.
// Os nomes dos campos seguem o payload real do CloudFormation, então um
// evento capturado dos logs do Lambda pode ser usado diretamente.
type EventFile struct {
	RequestType           string                 `yaml:"RequestType"`
	RequestID             string                 `yaml:"RequestId,omitempty"`
	LogicalResourceID     string                 `yaml:"LogicalResourceId,omitempty"`
	PhysicalResourceID    string                 `yaml:"PhysicalResourceId,omitempty"`
	ResourceProperties    map[string]interface{} `yaml:"ResourceProperties"`
	OldResourceProperties map[string]interface{} `yaml:"OldResourceProperties,omitempty"`
}

// ToEvent converte o arquivo para o tipo usado pelo handler
func (f *EventFile) ToEvent() cfn.Event {
	requestID := f.RequestID
	if requestID == "" {
		requestID = "local"
	}
	return cfn.Event{
		RequestType:           cfn.RequestType(f.RequestType),
		RequestID:             requestID,
		LogicalResourceID:     f.LogicalResourceID,
		PhysicalResourceID:    f.PhysicalResourceID,
		ResourceProperties:    f.ResourceProperties,
		OldResourceProperties: f.OldResourceProperties,
	}
}

// ParseFile faz o parse de um arquivo de evento; "-" lê do stdin
func ParseFile(filename string, stdin io.Reader) (*EventFile, error) {
	var (
		data []byte
		err  error
	)
	if filename == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event file %s: %w", filename, err)
	}
	return ParseYAML(data)
}

// ParseYAML faz o parse de um único documento YAML (ou JSON)
func ParseYAML(data []byte) (*EventFile, error) {
	var f EventFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("event file is empty")
		}
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	if f.ResourceProperties == nil {
		return nil, fmt.Errorf("event has no ResourceProperties")
	}
	return &f, nil
}
