package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Sonar: SonarConfig{
			URL:     "http://sonar.local",
			Token:   "squ_test",
			Timeout: time.Second,
		},
		Profiles: ProfileConfig{
			First:  "AX1",
			Second: "AX2",
			Target: "AX3",
		},
		PageSize: DefaultPageSize,
	}
}

func TestValidate(t *testing.T) {

	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.Sonar.Token = ""
	assert.ErrorContains(t, c.Validate(), "token")

	c = validConfig()
	c.Profiles.Second = ""
	assert.ErrorContains(t, c.Validate(), "source profile")

	c = validConfig()
	c.Profiles.Target = ""
	assert.ErrorContains(t, c.Validate(), "target profile")

	c = validConfig()
	c.PageSize = 501
	assert.ErrorContains(t, c.Validate(), "page size")
}

func TestLoadFromViper(t *testing.T) {

	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("sonar.url", "http://sonar.local/")
	viper.Set("sonar.token", "squ_test")
	viper.Set("profiles.first", "AX1")
	viper.Set("profiles.second", "AX2")
	viper.Set("profiles.target", "AX3")

	c := &Config{}
	require.NoError(t, c.Load())

	assert.Equal(t, "http://sonar.local", c.Sonar.URL)
	assert.Equal(t, DefaultTimeout, c.Sonar.Timeout)
	assert.Equal(t, DefaultPageSize, c.PageSize)
	assert.True(t, c.Dump.Compress)
	assert.False(t, c.DryRun)
	assert.Equal(t, "json", c.Log.Format)
}
