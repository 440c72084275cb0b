package stego_test

import (
	"context"
	"fmt"
	"image"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
)

func Example_stego() {
	// 64x48 carrier: hue bands across, brightness falling down the rows
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for i := 0; i < len(img.Pix); i += 4 {
		px, row := i/4%64, i/4/64
		shade := uint8(255 - row*4)
		img.Pix[i] = shade &^ uint8(px&16)
		img.Pix[i+1] = shade &^ uint8(px&32)
		img.Pix[i+2] = shade / 2
		img.Pix[i+3] = 0xff
	}

	// Initialize codec processing 16 rows at a time
	c, err := stego.New(stego.WithBandRows(16))
	if err != nil {
		fmt.Printf("Error creating codec: %v\n", err)
		return
	}

	// Hide the message
	ctx := context.Background()
	encoded, err := c.Encode(ctx, img, "Meet me at the old mill")
	if err != nil {
		fmt.Printf("Error encoding message: %v\n", err)
		return
	}

	// Recover it
	message, found, err := c.Decode(ctx, encoded)
	if err != nil {
		fmt.Printf("Error decoding message: %v\n", err)
		return
	}

	fmt.Println(found)
	fmt.Println(message)

	// Output:
	// true
	// Meet me at the old mill
}

func ExampleCheckCapacity() {
	// a 4x4 image has 48 LSB slots: 16 are taken by the end marker
	fmt.Println(stego.CheckCapacity(4, 4, 32))
	fmt.Println(stego.CheckCapacity(4, 4, 40))

	// Output:
	// true
	// false
}
