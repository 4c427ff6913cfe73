package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareerDesk/CareerDesk/internal/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        config.Assets
		wantClient bool
		wantErr    bool
	}{
		{
			name: "unconfigured",
			cfg:  config.Assets{},
		},
		{
			name: "configured",
			cfg: config.Assets{
				Endpoint:  "https://storage.example.com/",
				Region:    "us-east-1",
				AccessKey: "key",
				SecretKey: "secret",
				Bucket:    "careerdesk",
			},
			wantClient: true,
		},
		{
			name: "missing bucket",
			cfg: config.Assets{
				Endpoint:  "https://storage.example.com",
				AccessKey: "key",
				SecretKey: "secret",
			},
			wantErr: true,
		},
		{
			name: "missing credentials",
			cfg: config.Assets{
				Endpoint: "https://storage.example.com",
				Bucket:   "careerdesk",
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := New(tc.cfg)

			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)

			if tc.wantClient {
				assert.NotNil(t, client)
			} else {
				assert.Nil(t, client)
			}
		})
	}
}

func TestFileURL(t *testing.T) {
	client, err := New(config.Assets{
		Endpoint:  "https://storage.example.com/",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "careerdesk",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/careerdesk/avatars/x",
		client.fileURL("avatars/x"), "path-style URL without a public base")

	client, err = New(config.Assets{
		Endpoint:  "https://storage.example.com",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "careerdesk",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/x", client.fileURL("avatars/x"))
}
