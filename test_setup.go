package main

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/api/option"
)

// Connectivity smoke check for local setup. Run with `go run test_setup.go`
// after filling in .env.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	// Test MongoDB
	fmt.Println("Testing MongoDB connection...")
	mongoURI := os.Getenv("MONGO_URI")
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("MongoDB connection failed:", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatal("MongoDB ping failed:", err)
	}
	fmt.Println("✅ MongoDB connected successfully!")

	// Test Firebase (Auth only, optional)
	firebasePath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if firebasePath != "" {
		fmt.Println("\nTesting Firebase Auth connection...")
		opt := option.WithCredentialsFile(firebasePath)

		app, err := firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			log.Fatal("Firebase initialization failed:", err)
		}

		if _, err = app.Auth(context.Background()); err != nil {
			log.Fatal("Firebase Auth client failed:", err)
		}
		fmt.Println("✅ Firebase Auth connected successfully!")
	} else {
		fmt.Println("\nFIREBASE_SERVICE_ACCOUNT_PATH not set, skipping Firebase check")
	}

	// Test Cloudinary (optional)
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	if cloudName != "" && apiKey != "" && apiSecret != "" {
		fmt.Println("\nTesting Cloudinary connection...")
		cldURL := fmt.Sprintf("cloudinary://%s:%s@%s", apiKey, apiSecret, cloudName)
		cld, err := cloudinary.NewFromURL(cldURL)
		if err != nil {
			log.Fatal("Cloudinary initialization failed:", err)
		}

		if cld.Config.Cloud.CloudName != cloudName {
			log.Fatal("Cloudinary config mismatch")
		}
		fmt.Println("✅ Cloudinary connected successfully!")
	} else {
		fmt.Println("\nCloudinary credentials not set, uploads will be disabled")
	}

	// Test SMTP (optional)
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpHost != "" {
		fmt.Println("\nTesting SMTP connection...")
		c, err := smtp.Dial(smtpHost + ":" + smtpPort)
		if err != nil {
			log.Fatal("SMTP connection failed:", err)
		}
		c.Close()
		fmt.Println("✅ SMTP reachable!")
	}

	fmt.Println("\n🎉 All systems ready!")
}
