package translation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/dashscrape/internal/merge"
	"github.com/law-makers/dashscrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTS = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="en_US">
<context>
    <name>StatusPage</name>
    <message>
        <source>Lamp Hours</source>
        <extracomment>2-status/Lamp</extracomment>
        <translation>Lamp Hours</translation>
    </message>
    <message>
        <source>Lens Shift</source>
        <extracomment>x-/</extracomment>
    </message>
    <message>
        <source>No comment</source>
        <translation>ignored</translation>
    </message>
    <message>
        <source> Serial Number </source>
        <extracomment>plain</extracomment>
    </message>
</context>
</TS>`

func TestParse(t *testing.T) {
	msgs, err := Parse([]byte(sampleTS))
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Source: "Lamp Hours", Extracomment: "2-status/Lamp"}, msgs[0])
	assert.Equal(t, "Serial Number", msgs[2].Source)
}

func TestProcess(t *testing.T) {
	msgs, err := Parse([]byte(sampleTS))
	require.NoError(t, err)

	lookup := merge.Lookup{"Lamp Hours": models.StringPtr("1234")}
	entries := Process(msgs, lookup, "http://192.168.230.169/")
	require.Len(t, entries, 3)

	lamp := entries[0]
	assert.Equal(t, "Lamp Hours", lamp.Name)
	require.NotNil(t, lamp.UserLevel)
	assert.Equal(t, "2", *lamp.UserLevel)
	require.NotNil(t, lamp.URL)
	assert.Equal(t, "http://192.168.230.169/status/Lamp", *lamp.URL)
	require.NotNil(t, lamp.Value)
	assert.Equal(t, "1234", *lamp.Value)

	lens := entries[1]
	assert.Nil(t, lens.UserLevel, "non-numeric level is dropped")
	assert.Nil(t, lens.URL, "root path yields no URL")
	assert.Nil(t, lens.Value)

	serial := entries[2]
	assert.Nil(t, serial.UserLevel)
	assert.Nil(t, serial.URL)
	assert.Equal(t, "plain", serial.Extracomment)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "EN.ts"))
	assert.ErrorIs(t, err, merge.ErrMalformedInput)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EN.ts")
	require.NoError(t, os.WriteFile(path, []byte("<TS><message id=></message></TS>"), 0644))
	_, err := LoadFile(path)
	assert.ErrorIs(t, err, merge.ErrMalformedInput)
}
