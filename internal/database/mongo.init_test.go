package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedModel struct {
	ID           string `bson:"_id"`
	FirebaseUID  string `bson:"firebaseUid" index:"unique"`
	Email        string `bson:"email,omitempty" index:"unique,sparse"`
	RestaurantID string `bson:"restaurantId" index:"compound:period_unique"`
	Month        int    `bson:"month" index:"compound:period_unique"`
	CreatedAt    int64  `bson:"createdAt" index:"single,order:-1"`
	Plain        string `bson:"plain"`
}

func TestIndexSpecsFromModel(t *testing.T) {
	specs, err := IndexSpecsFromModel(indexedModel{})
	require.NoError(t, err)

	byName := map[string]IndexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}
	require.Len(t, byName, 4)

	assert.True(t, byName["firebaseUid_unique"].Unique)
	assert.False(t, byName["firebaseUid_unique"].Sparse)

	assert.True(t, byName["email_unique"].Sparse)

	period := byName["period_unique"]
	assert.True(t, period.Unique)
	assert.Equal(t, bson.D{{Key: "restaurantId", Value: 1}, {Key: "month", Value: 1}}, period.Keys)

	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, byName["createdAt_single"].Keys)
}

func TestSameIndex(t *testing.T) {
	spec := IndexSpec{Name: "ownerId_unique", Keys: bson.D{{Key: "ownerId", Value: 1}}, Unique: true}
	assert.True(t, sameIndex(bson.M{"key": bson.M{"ownerId": int32(1)}, "unique": true}, spec))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"ownerId": int32(1)}}, spec))
}
